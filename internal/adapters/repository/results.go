package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

const resultsFrom = "results r" +
	" JOIN drivers d ON d.id = r.driver_id" +
	" JOIN gps g ON g.event_date = r.gp_date"

// positionOrder sorts classified finishers first, DNFs last.
const positionOrder = "CASE WHEN r.position IS NULL THEN 1 ELSE 0 END, r.position ASC, r.id ASC"

var resultColumns = append([]string{
	"r.id", "r.driver_id", "r.gp_date", "r.position", "r.team", "r.engine", "r.type",
}, append(append([]string{}, driverColumns...), gpColumns...)...)

func scanResult(s scanner) (model.Result, error) {
	var (
		r   model.Result
		pos sql.NullInt64
		d   model.Driver
		g   model.GP
	)
	err := s.Scan(
		&r.ID, &r.DriverID, &r.GPDate, &pos, &r.Team, &r.Engine, &r.Type,
		&d.ID, &d.Name, &d.Sex, &d.BirthDate, &d.Country,
		&g.Date, &g.Name, &g.Country,
	)
	if err != nil {
		return model.Result{}, err
	}
	if pos.Valid {
		r.Position = model.IntPtr(int(pos.Int64))
	}
	r.Driver = &d
	r.GP = &g
	return r, nil
}

func nullablePosition(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// checkResultRefs reports ErrInvalidReference when the driver or GP of r
// does not exist.
func checkResultRefs(ctx context.Context, q querier, d Dialect, r model.Result) error {
	var n int
	err := q.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM drivers WHERE id = ?`), r.DriverID).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: driver %d", ErrInvalidReference, r.DriverID)
	}
	err = q.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM gps WHERE event_date = ?`), r.GPDate).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: gp %s", ErrInvalidReference, r.GPDate)
	}
	return nil
}

func resultSchema() Schema[model.Result, int64, model.ResultPatch] {
	return Schema[model.Result, int64, model.ResultPatch]{
		Entity:        "result",
		Table:         "results",
		Alias:         "r",
		From:          resultsFrom,
		KeyColumn:     "id",
		Columns:       resultColumns,
		Scan:          scanResult,
		InsertColumns: []string{"driver_id", "gp_date", "position", "team", "engine", "type"},
		InsertValues: func(r model.Result) []any {
			return []any{r.DriverID, r.GPDate, nullablePosition(r.Position), r.Team, r.Engine, r.Type}
		},
		Assignments: func(p model.ResultPatch) ([]string, []any) {
			var a assignments
			a.add(p.DriverID.Set, "driver_id", p.DriverID.Value)
			a.add(p.GPDate.Set, "gp_date", p.GPDate.Value)
			a.add(p.Position.Set, "position", nullablePosition(p.Position.Value))
			a.add(p.Team.Set, "team", p.Team.Value)
			a.add(p.Engine.Set, "engine", p.Engine.Value)
			a.add(p.Type.Set, "type", p.Type.Value)
			return a.cols, a.vals
		},
		Apply: func(r model.Result, p model.ResultPatch) model.Result { return p.Apply(r) },
		Check: checkResultRefs,
	}
}

// Results is the race result gateway. Listed rows carry their driver and GP.
type Results struct {
	*Table[model.Result, int64, model.ResultPatch]
}

func newResults(db *DB) *Results {
	return &Results{
		Table: NewTable(db, resultSchema(), Ordering{
			ListAll: "r.gp_date DESC, " + positionOrder,
			Paged:   "r.gp_date ASC, " + positionOrder,
		}),
	}
}

// ListByDriver returns the results of one driver, newest GP first.
func (g *Results) ListByDriver(ctx context.Context, driverID int64) (out []model.Result, err error) {
	defer g.observe("list_by_driver", time.Now(), &err)
	return g.byDriverIn(ctx, g.db.sql, driverID)
}

// ListByGP returns the classification of one GP, DNFs last.
func (g *Results) ListByGP(ctx context.Context, date model.Date) (out []model.Result, err error) {
	defer g.observe("list_by_gp", time.Now(), &err)
	return g.byGPIn(ctx, g.db.sql, date)
}

func (g *Results) byDriverIn(ctx context.Context, q querier, driverID int64) ([]model.Result, error) {
	return g.listIn(ctx, q, "r.driver_id = ?", "r.gp_date DESC, r.id ASC", driverID)
}

func (g *Results) byGPIn(ctx context.Context, q querier, date model.Date) ([]model.Result, error) {
	return g.listIn(ctx, q, "r.gp_date = ?", positionOrder, date)
}
