package repository

import (
	"context"
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

var driverColumns = []string{"d.id", "d.name", "d.sex", "d.birth_date", "d.country"}

func scanDriver(s scanner) (model.Driver, error) {
	var d model.Driver
	err := s.Scan(&d.ID, &d.Name, &d.Sex, &d.BirthDate, &d.Country)
	return d, err
}

func driverSchema() Schema[model.Driver, int64, model.DriverPatch] {
	return Schema[model.Driver, int64, model.DriverPatch]{
		Entity:        "driver",
		Table:         "drivers",
		Alias:         "d",
		From:          "drivers d",
		KeyColumn:     "id",
		Columns:       driverColumns,
		Scan:          scanDriver,
		InsertColumns: []string{"name", "sex", "birth_date", "country"},
		InsertValues: func(d model.Driver) []any {
			return []any{d.Name, string(d.Sex), d.BirthDate, d.Country}
		},
		Assignments: func(p model.DriverPatch) ([]string, []any) {
			var a assignments
			a.add(p.Name.Set, "name", p.Name.Value)
			a.add(p.Sex.Set, "sex", string(p.Sex.Value))
			a.add(p.BirthDate.Set, "birth_date", p.BirthDate.Value)
			a.add(p.Country.Set, "country", p.Country.Value)
			return a.cols, a.vals
		},
		Apply: func(d model.Driver, p model.DriverPatch) model.Driver { return p.Apply(d) },
	}
}

// Drivers is the driver gateway, listed by name.
type Drivers struct {
	*Table[model.Driver, int64, model.DriverPatch]
	results *Results
}

func newDrivers(db *DB, results *Results) *Drivers {
	return &Drivers{
		Table:   NewTable(db, driverSchema(), Ordering{ListAll: "d.name ASC, d.id ASC", Paged: "d.name ASC, d.id ASC"}),
		results: results,
	}
}

// FindWithResults returns driver id with every result it scored, newest GP
// first, each carrying its GP.
func (g *Drivers) FindWithResults(ctx context.Context, id int64) (model.DriverWithResults, error) {
	var out model.DriverWithResults
	err := g.db.inTx(ctx, func(q querier) error {
		d, err := g.findIn(ctx, q, id)
		if err != nil {
			return err
		}
		rs, err := g.results.byDriverIn(ctx, q, id)
		if err != nil {
			return err
		}
		out = model.DriverWithResults{Driver: d, Results: rs}
		return nil
	})
	if err != nil {
		return model.DriverWithResults{}, fmt.Errorf("driver with results: %w", err)
	}
	return out, nil
}

// assignments collects the SET list of an update.
type assignments struct {
	cols []string
	vals []any
}

func (a *assignments) add(set bool, col string, val any) {
	if !set {
		return
	}
	a.cols = append(a.cols, col)
	a.vals = append(a.vals, val)
}
