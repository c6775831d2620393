// Package model contains the reference data records passed between layers.
package model

// Sex is a driver's recorded sex.
type Sex string

// Allowed Sex values.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is one of the allowed values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Driver is a racing driver.
type Driver struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Sex       Sex    `json:"sex"`
	BirthDate Date   `json:"birthDate"`
	Country   string `json:"country"`
}

// DriverPatch holds the driver columns an update may change.
type DriverPatch struct {
	Name      Field[string]
	Sex       Field[Sex]
	BirthDate Field[Date]
	Country   Field[string]
}

// Apply returns d with the patch applied.
func (p DriverPatch) Apply(d Driver) Driver {
	d.Name = p.Name.Apply(d.Name)
	d.Sex = p.Sex.Apply(d.Sex)
	d.BirthDate = p.BirthDate.Apply(d.BirthDate)
	d.Country = p.Country.Apply(d.Country)
	return d
}

// DriverWithResults is a driver plus every result it scored, each with its GP.
type DriverWithResults struct {
	Driver
	Results []Result `json:"results"`
}
