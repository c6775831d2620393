package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/paddock/internal/domain/model"
)

// handleDriver handles GET /drivers/{id}.
func (s *Server) handleDriver(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_driver"
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		s.fail(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid driver id %q", raw)))
		return
	}
	d, err := s.deps.Drivers.FindWithResults(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleGP handles GET /gps/{date}.
func (s *Server) handleGP(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_gp"
	raw := r.PathValue("date")
	date, err := model.ParseDate(raw)
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid GP date %q", raw)))
		return
	}
	gp, err := s.deps.GPs.FindWithResults(r.Context(), date)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, gp)
}
