package api

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
)

// Page query keys for the dashboard listing.
const (
	DriversPageKey = "driversPage"
	GPsPageKey     = "gpsPage"
	ResultsPageKey = "resultsPage"
)

// listHandler serves GET ?page&pageSize for one entity.
func listHandler[T any](s *Server, op string, reader PageReader[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := pagination.Parse(r.URL.Query(), pagination.PageKey, s.limits)
		if err != nil {
			s.fail(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		page, err := reader.ListPaged(r.Context(), p)
		if err != nil {
			s.fail(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// dashboard is the combined /database listing.
type dashboard struct {
	Drivers model.Page[model.Driver] `json:"drivers"`
	GPs     model.Page[model.GP]     `json:"gps"`
	Results model.Page[model.Result] `json:"results"`
}

// handleDatabase lists one page of drivers, GPs and results concurrently.
// Each entity has its own page number; pageSize is shared.
func (s *Server) handleDatabase(w http.ResponseWriter, r *http.Request) {
	const op = "api.database"
	q := r.URL.Query()

	var params [3]pagination.Params
	for i, key := range []string{DriversPageKey, GPsPageKey, ResultsPageKey} {
		p, err := pagination.Parse(q, key, s.limits)
		if err != nil {
			s.fail(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		params[i] = p
	}

	var out dashboard
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		out.Drivers, err = s.deps.Drivers.ListPaged(ctx, params[0])
		return err
	})
	g.Go(func() (err error) {
		out.GPs, err = s.deps.GPs.ListPaged(ctx, params[1])
		return err
	})
	g.Go(func() (err error) {
		out.Results, err = s.deps.Results.ListPaged(ctx, params[2])
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
