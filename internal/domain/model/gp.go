package model

// GP is a Grand Prix event, keyed by its calendar date.
type GP struct {
	Date    Date   `json:"date"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// GPPatch holds the GP columns an update may change. The date is the key
// and is never patched.
type GPPatch struct {
	Name    Field[string]
	Country Field[string]
}

// Apply returns g with the patch applied.
func (p GPPatch) Apply(g GP) GP {
	g.Name = p.Name.Apply(g.Name)
	g.Country = p.Country.Apply(g.Country)
	return g
}

// GPWithResults is an event plus its classification, ordered by finishing
// position with non-finishers last.
type GPWithResults struct {
	GP
	Results []Result `json:"results"`
}
