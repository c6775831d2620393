package seed

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	firstNames = []string{"Max", "Lewis", "Charles", "Lando", "Oscar", "George", "Carlos", "Fernando", "Pierre", "Esteban", "Yuki", "Alex"}
	lastNames  = []string{"Verstappen", "Hamilton", "Leclerc", "Norris", "Piastri", "Russell", "Sainz", "Alonso", "Gasly", "Ocon", "Tsunoda", "Albon"}
	countries  = []string{"Netherlands", "United Kingdom", "Monaco", "Australia", "Spain", "France", "Japan", "Thailand", "Italy", "Belgium", "Brazil", "Canada"}
	teams      = []string{"Red Bull", "Mercedes", "Ferrari", "McLaren", "Aston Martin", "Alpine", "Williams"}
	engines    = []string{"Honda RBPT", "Mercedes", "Ferrari", "Renault"}
)

// randomInt returns a uniform value in [0, n).
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func pick(values []string) string {
	return values[randomInt(len(values))]
}

// newRunID returns a short unique tag stamped on every generated name.
func newRunID() string {
	return uuid.NewString()[:8]
}

// driverForms builds n create forms whose names carry runID.
func driverForms(runID string, n int) []url.Values {
	forms := make([]url.Values, n)
	for i := range forms {
		sex := "M"
		if randomInt(4) == 0 {
			sex = "F"
		}
		birth := time.Date(1970+randomInt(35), time.Month(1+randomInt(12)), 1+randomInt(28), 0, 0, 0, 0, time.UTC)
		forms[i] = url.Values{
			"intent":    {"create"},
			"name":      {fmt.Sprintf("%s %s %s-%d", pick(firstNames), pick(lastNames), runID, i)},
			"sex":       {sex},
			"birthDate": {birth.Format(time.DateOnly)},
			"country":   {pick(countries)},
		}
	}
	return forms
}

// gpDates returns n distinct dates derived from runID so that separate runs
// rarely collide on the GP key.
func gpDates(runID string, n int) []string {
	offset := 0
	if v, err := strconv.ParseUint(runID, 16, 32); err == nil {
		offset = int(v % 20000)
	}
	start := epoch.AddDate(0, 0, offset)
	out := make([]string, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i*gpSpacingDays).Format(time.DateOnly)
	}
	return out
}

// gpForms builds create forms for the given dates.
func gpForms(runID string, dates []string) []url.Values {
	forms := make([]url.Values, len(dates))
	for i, d := range dates {
		country := pick(countries)
		forms[i] = url.Values{
			"intent":  {"create"},
			"date":    {d},
			"name":    {fmt.Sprintf("%s Grand Prix %s-%d", country, runID, i)},
			"country": {country},
		}
	}
	return forms
}

// resultForms records perGP results for every GP, drawing distinct drivers
// per race. Roughly one in ten finishes is a DNF with no position.
func resultForms(driverIDs []int64, dates []string, perGP int) []url.Values {
	if perGP > len(driverIDs) {
		perGP = len(driverIDs)
	}
	forms := make([]url.Values, 0, perGP*len(dates))
	for _, d := range dates {
		order := shuffled(len(driverIDs))
		for pos := 0; pos < perGP; pos++ {
			f := url.Values{
				"intent":   {"create"},
				"driverId": {strconv.FormatInt(driverIDs[order[pos]], 10)},
				"gpDate":   {d},
				"team":     {pick(teams)},
				"engine":   {pick(engines)},
				"type":     {"race"},
			}
			if randomInt(10) != 0 {
				f.Set("position", strconv.Itoa(pos+1))
			}
			forms = append(forms, f)
		}
	}
	return forms
}

// shuffled returns a random permutation of [0, n).
func shuffled(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := randomInt(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
