package repository

import (
	"context"
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

// GP paged orderings.
const (
	GPOrderName = "name"
	GPOrderDate = "date"
)

var gpColumns = []string{"g.event_date", "g.name", "g.country"}

func scanGP(s scanner) (model.GP, error) {
	var g model.GP
	err := s.Scan(&g.Date, &g.Name, &g.Country)
	return g, err
}

func gpSchema() Schema[model.GP, model.Date, model.GPPatch] {
	return Schema[model.GP, model.Date, model.GPPatch]{
		Entity:        "gp",
		Table:         "gps",
		Alias:         "g",
		From:          "gps g",
		KeyColumn:     "event_date",
		Columns:       gpColumns,
		Scan:          scanGP,
		InsertColumns: []string{"event_date", "name", "country"},
		InsertValues: func(g model.GP) []any {
			return []any{g.Date, g.Name, g.Country}
		},
		Assignments: func(p model.GPPatch) ([]string, []any) {
			var a assignments
			a.add(p.Name.Set, "name", p.Name.Value)
			a.add(p.Country.Set, "country", p.Country.Value)
			return a.cols, a.vals
		},
		Apply: func(g model.GP, p model.GPPatch) model.GP { return p.Apply(g) },
	}
}

// GPs is the Grand Prix gateway. Full listings are newest first; paged
// listings follow the configured order.
type GPs struct {
	*Table[model.GP, model.Date, model.GPPatch]
	results *Results
}

func newGPs(db *DB, results *Results, pagedOrder string) *GPs {
	paged := "g.name ASC, g.event_date ASC"
	if pagedOrder == GPOrderDate {
		paged = "g.event_date DESC"
	}
	return &GPs{
		Table:   NewTable(db, gpSchema(), Ordering{ListAll: "g.event_date DESC", Paged: paged}),
		results: results,
	}
}

// FindWithResults returns the GP on date with its classification, ordered
// by position with non-finishers last, each result carrying its driver.
func (g *GPs) FindWithResults(ctx context.Context, date model.Date) (model.GPWithResults, error) {
	var out model.GPWithResults
	err := g.db.inTx(ctx, func(q querier) error {
		gp, err := g.findIn(ctx, q, date)
		if err != nil {
			return err
		}
		rs, err := g.results.byGPIn(ctx, q, date)
		if err != nil {
			return err
		}
		out = model.GPWithResults{GP: gp, Results: rs}
		return nil
	})
	if err != nil {
		return model.GPWithResults{}, fmt.Errorf("gp with results: %w", err)
	}
	return out, nil
}
