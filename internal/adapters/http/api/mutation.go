package api

import (
	"mime"
	"net/http"
	"net/url"

	"github.com/okian/paddock/internal/domain/mutation"
	"github.com/okian/paddock/pkg/logger"
)

// maxFormBytes caps mutation and login request bodies.
const maxFormBytes = 1 << 20

// statusFor maps a mutation outcome to its HTTP status.
func statusFor(o mutation.Outcome) int {
	switch o {
	case mutation.OK:
		return http.StatusOK
	case mutation.Invalid:
		return http.StatusUnprocessableEntity
	case mutation.NotFound:
		return http.StatusNotFound
	case mutation.Conflict:
		return http.StatusConflict
	case mutation.BadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// mutationHandler serves POST form mutations through m.
func (s *Server) mutationHandler(m Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := readForm(w, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, mutation.Envelope{Message: "Invalid form"})
			return
		}
		resp, err := m.Handle(r.Context(), form)
		if err != nil {
			s.logger.Error(r.Context(), "mutation storage failure",
				logger.String("entity", m.Entity()),
				logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, mutation.Envelope{Message: "Failed to process request"})
			return
		}
		writeJSON(w, statusFor(resp.Outcome), resp.Envelope)
	}
}

// readForm parses an urlencoded or multipart body and returns its fields.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}
