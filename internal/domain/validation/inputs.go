package validation

// DriverInput is the raw driver form.
type DriverInput struct {
	Name      string `form:"name" validate:"min=2"`
	Sex       string `form:"sex" validate:"oneof=M F"`
	BirthDate string `form:"birthDate" validate:"required,calendar_date"`
	Country   string `form:"country" validate:"min=2"`
}

var driverMessages = map[string]string{
	"name.min":           "Name must be at least 2 characters",
	"sex.oneof":          "Sex must be M or F",
	"birthDate.required": "Birth date is required",
	"birthDate.calendar_date": "Birth date must be a valid date (YYYY-MM-DD)",
	"country.min":        "Country must be at least 2 characters",
}

func (DriverInput) Messages() map[string]string { return driverMessages }

// GPInput is the raw GP form.
type GPInput struct {
	Date    string `form:"date" validate:"required,calendar_date"`
	Name    string `form:"name" validate:"min=2"`
	Country string `form:"country" validate:"min=2"`
}

var gpMessages = map[string]string{
	"date.required": "Date is required",
	"date.calendar_date": "Date must be a valid date (YYYY-MM-DD)",
	"name.min":      "Name must be at least 2 characters",
	"country.min":   "Country must be at least 2 characters",
}

func (GPInput) Messages() map[string]string { return gpMessages }

// ResultInput is the raw result form. An empty position records a DNF.
type ResultInput struct {
	DriverID string `form:"driverId" validate:"required,positive_int"`
	GPDate   string `form:"gpDate" validate:"required,calendar_date"`
	Position string `form:"position" validate:"omitempty,positive_int"`
	Team     string `form:"team" validate:"max=100"`
	Engine   string `form:"engine" validate:"max=100"`
	Type     string `form:"type" validate:"max=100"`
}

var resultMessages = map[string]string{
	"driverId.required":     "Driver is required",
	"driverId.positive_int": "Driver must be a positive number",
	"gpDate.required":       "GP date is required",
	"gpDate.calendar_date":       "GP date must be a valid date (YYYY-MM-DD)",
	"position.positive_int": "Position must be a positive number",
	"team.max":              "Team must be at most 100 characters",
	"engine.max":            "Engine must be at most 100 characters",
	"type.max":              "Type must be at most 100 characters",
}

func (ResultInput) Messages() map[string]string { return resultMessages }
