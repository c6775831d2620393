package model

// Result is one driver's outcome at one GP. A nil Position means the driver
// did not finish.
type Result struct {
	ID       int64  `json:"id"`
	DriverID int64  `json:"driverId"`
	GPDate   Date   `json:"gpDate"`
	Position *int   `json:"position"`
	Team     string `json:"team,omitempty"`
	Engine   string `json:"engine,omitempty"`
	Type     string `json:"type,omitempty"`

	// Resolved relations, populated by listing queries that join them.
	Driver *Driver `json:"driver,omitempty"`
	GP     *GP     `json:"gp,omitempty"`
}

// Finished reports whether the driver was classified.
func (r Result) Finished() bool {
	return r.Position != nil
}

// ResultPatch holds the result columns an update may change.
type ResultPatch struct {
	DriverID Field[int64]
	GPDate   Field[Date]
	Position Field[*int]
	Team     Field[string]
	Engine   Field[string]
	Type     Field[string]
}

// Apply returns r with the patch applied.
func (p ResultPatch) Apply(r Result) Result {
	r.DriverID = p.DriverID.Apply(r.DriverID)
	r.GPDate = p.GPDate.Apply(r.GPDate)
	r.Position = p.Position.Apply(r.Position)
	r.Team = p.Team.Apply(r.Team)
	r.Engine = p.Engine.Apply(r.Engine)
	r.Type = p.Type.Apply(r.Type)
	return r
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
