// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/okian/paddock/internal/adapters/session"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/mutation"
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/logger"
)

// PageReader lists one page of an entity.
type PageReader[T any] interface {
	ListPaged(ctx context.Context, p pagination.Params) (model.Page[T], error)
}

// DriverReader serves driver listings and the driver detail view.
type DriverReader interface {
	PageReader[model.Driver]
	FindWithResults(ctx context.Context, id int64) (model.DriverWithResults, error)
}

// GPReader serves GP listings and the GP detail view.
type GPReader interface {
	PageReader[model.GP]
	FindWithResults(ctx context.Context, date model.Date) (model.GPWithResults, error)
}

// Mutator runs the form mutation protocol for one entity.
type Mutator interface {
	Entity() string
	Handle(ctx context.Context, form url.Values) (mutation.Response, error)
}

// Authenticator opens and closes admin sessions.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	Logout(ctx context.Context, token string)
}

// Dependencies required by HTTP handlers.
type Dependencies struct {
	Drivers  DriverReader
	GPs      GPReader
	Results  PageReader[model.Result]
	Messages PageReader[model.Message]

	DriverMutations Mutator
	GPMutations     Mutator
	ResultMutations Mutator

	Sessions session.Store
	Auth     Authenticator
	Stats    StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps          Dependencies
	limits        pagination.Limits
	sessionCookie string
	loginPath     string
	logger        logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{
		limits:        pagination.DefaultLimits(),
		sessionCookie: DefaultSessionCookie,
		loginPath:     DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}
	return &Server{
		deps:          deps,
		limits:        o.limits,
		sessionCookie: o.sessionCookie,
		loginPath:     o.loginPath,
		logger:        o.logger,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps.Stats),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /drivers", "drivers", listHandler(s, "api.list_drivers", s.deps.Drivers))
	route("POST /drivers", "drivers", s.mutationHandler(s.deps.DriverMutations))
	route("GET /drivers/{id}", "driver", s.handleDriver)

	route("GET /gps", "gps", listHandler(s, "api.list_gps", s.deps.GPs))
	route("POST /gps", "gps", s.mutationHandler(s.deps.GPMutations))
	route("GET /gps/{date}", "gp", s.handleGP)

	route("GET /results", "results", listHandler(s, "api.list_results", s.deps.Results))
	route("POST /results", "results", s.mutationHandler(s.deps.ResultMutations))

	route("GET /database", "database", s.handleDatabase)

	route("GET /messages", "messages", s.requireSession(listHandler(s, "api.list_messages", s.deps.Messages)))
	route("POST /login", "login", s.handleLogin)
	route("POST /logout", "logout", s.handleLogout)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < statusInternalError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, logs server-side failures and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= statusInternalError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}
