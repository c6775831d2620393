package seed

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Submission outcomes.
const (
	outcomeSuccess  = "success"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeFailed   = "failed"
)

// Defaults applied to zero Config fields.
const (
	DefaultPageSize = 10
	DefaultTimeout  = 30 * time.Second
	DefaultWorkers  = 4
)

// gpSpacingDays separates generated GP dates.
const gpSpacingDays = 7

// epoch is the earliest generated GP date.
var epoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
