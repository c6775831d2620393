package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/metrics"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Schema maps entity T with key K and patch P onto SQL.
type Schema[T any, K comparable, P any] struct {
	// Entity labels metrics and errors.
	Entity string
	// Table is the base table written to and counted.
	Table string
	// Alias is the base table's alias inside From.
	Alias string
	// From is the read source, usually the aliased table plus joins.
	From string
	// KeyColumn is the unqualified key column of Table.
	KeyColumn string
	// Columns is the read select list, in the order Scan expects.
	Columns []string
	Scan    func(s scanner) (T, error)

	// InsertColumns and InsertValues describe a create.
	InsertColumns []string
	InsertValues  func(rec T) []any

	// Assignments lists the columns and values a patch sets.
	Assignments func(patch P) ([]string, []any)
	// Apply merges a patch into a row. Used to run Check before updates.
	Apply func(rec T, patch P) T

	// Check optionally verifies a row before it is written.
	Check func(ctx context.Context, q querier, d Dialect, rec T) error
}

// Ordering holds ORDER BY clauses, without the keywords, for each listing.
type Ordering struct {
	ListAll string
	Paged   string
}

// Table is the generic gateway over one Schema.
type Table[T any, K comparable, P any] struct {
	db     *DB
	schema Schema[T, K, P]
	order  Ordering
}

// NewTable binds schema to db with the given ordering.
func NewTable[T any, K comparable, P any](db *DB, schema Schema[T, K, P], order Ordering) *Table[T, K, P] {
	if schema.From == "" {
		schema.From = schema.Table
	}
	return &Table[T, K, P]{db: db, schema: schema, order: order}
}

func (t *Table[T, K, P]) keyRef() string {
	if t.schema.Alias != "" {
		return t.schema.Alias + "." + t.schema.KeyColumn
	}
	return t.schema.KeyColumn
}

func (t *Table[T, K, P]) selectSQL() string {
	return "SELECT " + strings.Join(t.schema.Columns, ", ") + " FROM " + t.schema.From
}

// observe records latency and, for unexpected failures, an error count.
func (t *Table[T, K, P]) observe(op string, start time.Time, err *error) {
	metrics.RecordRepositoryQueryLatency(t.schema.Entity, op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordRepositoryError(t.schema.Entity, op)
	}
}

// ListAll returns every row in the ListAll order.
func (t *Table[T, K, P]) ListAll(ctx context.Context) (out []T, err error) {
	defer t.observe("list_all", time.Now(), &err)
	return t.listIn(ctx, t.db.sql, "", t.order.ListAll)
}

// ListPaged returns one page in the Paged order together with the total
// row count. A page past the end has no rows but the correct total.
func (t *Table[T, K, P]) ListPaged(ctx context.Context, p pagination.Params) (page model.Page[T], err error) {
	defer t.observe("list_paged", time.Now(), &err)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = pagination.DefaultPageSize
	}
	page = model.Page[T]{Data: []T{}, Page: p.Page, PageSize: p.PageSize}
	err = t.db.inTx(ctx, func(q querier) error {
		total, err := t.countIn(ctx, q)
		if err != nil {
			return err
		}
		page.Total = total
		if p.Offset() >= total {
			return nil
		}
		query := t.selectSQL() + orderBy(t.order.Paged) + " LIMIT ? OFFSET ?"
		page.Data, err = t.collect(ctx, q, query, p.Limit(), p.Offset())
		return err
	})
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("list %s page %d: %w", t.schema.Entity, p.Page, err)
	}
	return page, nil
}

// FindByKey returns the row with key k or ErrNotFound.
func (t *Table[T, K, P]) FindByKey(ctx context.Context, k K) (rec T, err error) {
	defer t.observe("find", time.Now(), &err)
	return t.findIn(ctx, t.db.sql, k)
}

// Create inserts rec and returns the stored row with its key.
func (t *Table[T, K, P]) Create(ctx context.Context, rec T) (out T, err error) {
	defer t.observe("create", time.Now(), &err)
	err = t.db.inTx(ctx, func(q querier) error {
		if t.schema.Check != nil {
			if err := t.schema.Check(ctx, q, t.db.dialect, rec); err != nil {
				return err
			}
		}
		cols := t.schema.InsertColumns
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			t.schema.Table, strings.Join(cols, ", "), placeholders(len(cols)), t.schema.KeyColumn)
		var k K
		if err := q.QueryRowContext(ctx, t.db.dialect.Rebind(query), t.schema.InsertValues(rec)...).Scan(&k); err != nil {
			return classify(err)
		}
		stored, err := t.findIn(ctx, q, k)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("create %s: %w", t.schema.Entity, err)
	}
	return out, nil
}

// Update applies patch to the row with key k and returns the new row.
// Fields the patch leaves unset keep their stored values.
func (t *Table[T, K, P]) Update(ctx context.Context, k K, patch P) (out T, err error) {
	defer t.observe("update", time.Now(), &err)
	err = t.db.inTx(ctx, func(q querier) error {
		current, err := t.findIn(ctx, q, k)
		if err != nil {
			return err
		}
		cols, vals := t.schema.Assignments(patch)
		if len(cols) == 0 {
			out = current
			return nil
		}
		if t.schema.Check != nil && t.schema.Apply != nil {
			if err := t.schema.Check(ctx, q, t.db.dialect, t.schema.Apply(current, patch)); err != nil {
				return err
			}
		}
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = ?"
		}
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.schema.Table, strings.Join(sets, ", "), t.schema.KeyColumn)
		if _, err := q.ExecContext(ctx, t.db.dialect.Rebind(query), append(vals, k)...); err != nil {
			return classify(err)
		}
		out, err = t.findIn(ctx, q, k)
		return err
	})
	if err != nil {
		return out, fmt.Errorf("update %s: %w", t.schema.Entity, err)
	}
	return out, nil
}

// Delete removes the row with key k and returns it. Deleting a missing
// row, including one deleted before, returns ErrNotFound.
func (t *Table[T, K, P]) Delete(ctx context.Context, k K) (out T, err error) {
	defer t.observe("delete", time.Now(), &err)
	err = t.db.inTx(ctx, func(q querier) error {
		current, err := t.findIn(ctx, q, k)
		if err != nil {
			return err
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.schema.Table, t.schema.KeyColumn)
		if _, err := q.ExecContext(ctx, t.db.dialect.Rebind(query), k); err != nil {
			return classify(err)
		}
		out = current
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("delete %s: %w", t.schema.Entity, err)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (t *Table[T, K, P]) Count(ctx context.Context) (n int, err error) {
	defer t.observe("count", time.Now(), &err)
	return t.countIn(ctx, t.db.sql)
}

func (t *Table[T, K, P]) countIn(ctx context.Context, q querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.schema.Table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.schema.Entity, err)
	}
	return n, nil
}

func (t *Table[T, K, P]) findIn(ctx context.Context, q querier, k K) (T, error) {
	query := t.selectSQL() + " WHERE " + t.keyRef() + " = ?"
	rec, err := t.schema.Scan(q.QueryRowContext(ctx, t.db.dialect.Rebind(query), k))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s %v: %w", t.schema.Entity, k, ErrNotFound)
	}
	return rec, err
}

// listIn returns the rows matching where (which may be empty) in order.
func (t *Table[T, K, P]) listIn(ctx context.Context, q querier, where, order string, args ...any) ([]T, error) {
	query := t.selectSQL()
	if where != "" {
		query += " WHERE " + where
	}
	return t.collect(ctx, q, query+orderBy(order), args...)
}

// collect reads every row before returning so the connection is free for
// the next statement.
func (t *Table[T, K, P]) collect(ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, t.db.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.schema.Entity, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := t.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.schema.Entity, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.schema.Entity, err)
	}
	return out, nil
}

func orderBy(clause string) string {
	if clause == "" {
		return ""
	}
	return " ORDER BY " + clause
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
