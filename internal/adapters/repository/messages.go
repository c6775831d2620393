package repository

import (
	"context"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
)

// noPatch marks an entity without updates.
type noPatch struct{}

func scanMessage(s scanner) (model.Message, error) {
	var m model.Message
	err := s.Scan(&m.ID, &m.CreatedAt, &m.Name, &m.Email, &m.Subject, &m.Message)
	if err == nil {
		m.CreatedAt = m.CreatedAt.UTC()
	}
	return m, err
}

func messageSchema() Schema[model.Message, int64, noPatch] {
	return Schema[model.Message, int64, noPatch]{
		Entity:        "message",
		Table:         "messages",
		Alias:         "m",
		From:          "messages m",
		KeyColumn:     "id",
		Columns:       []string{"m.id", "m.created_at", "m.name", "m.email", "m.subject", "m.message"},
		Scan:          scanMessage,
		InsertColumns: []string{"created_at", "name", "email", "subject", "message"},
		InsertValues: func(m model.Message) []any {
			return []any{m.CreatedAt, m.Name, m.Email, m.Subject, m.Message}
		},
		Assignments: func(noPatch) ([]string, []any) { return nil, nil },
	}
}

// Messages is the contact inbox. Messages are written once and listed
// newest first; there is no update or delete.
type Messages struct {
	table *Table[model.Message, int64, noPatch]
	now   func() time.Time
}

func newMessages(db *DB) *Messages {
	order := "m.created_at DESC, m.id DESC"
	return &Messages{
		table: NewTable(db, messageSchema(), Ordering{ListAll: order, Paged: order}),
		now:   time.Now,
	}
}

// ListAll returns every message, newest first.
func (g *Messages) ListAll(ctx context.Context) ([]model.Message, error) {
	return g.table.ListAll(ctx)
}

// ListPaged returns one page of messages, newest first.
func (g *Messages) ListPaged(ctx context.Context, p pagination.Params) (model.Page[model.Message], error) {
	return g.table.ListPaged(ctx, p)
}

// FindByKey returns message id or ErrNotFound.
func (g *Messages) FindByKey(ctx context.Context, id int64) (model.Message, error) {
	return g.table.FindByKey(ctx, id)
}

// Create stores m, stamping CreatedAt when it is zero.
func (g *Messages) Create(ctx context.Context, m model.Message) (model.Message, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = g.now()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return g.table.Create(ctx, m)
}

// Count returns the number of stored messages.
func (g *Messages) Count(ctx context.Context) (int, error) {
	return g.table.Count(ctx)
}
