// Package handler implements the HTTP handlers for the route contribution API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (health.go, suggestion.go, etc.) but share the same Server struct so
// they can access its dependencies. Routes mounts them on a chi router.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/matching"
	"github.com/pkordes/dropalong/backend/internal/service"
)

// SuggestionServicer defines the suggestion and moderation operations the
// handlers depend on. Defining it here, in the consumer package, lets handler
// tests inject a mock without touching the database or service layer.
type SuggestionServicer interface {
	Submit(ctx context.Context, actor domain.Actor, in service.SuggestionInput) (domain.RouteSuggestion, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.RouteSuggestion, error)
	Queue(ctx context.Context, actor domain.Actor, filter domain.SuggestionFilter, p domain.PaginationParams) (domain.Page[domain.RouteSuggestion], error)
	Moderate(ctx context.Context, actor domain.Actor, id uuid.UUID, status string) (domain.RouteSuggestion, error)
	Edit(ctx context.Context, actor domain.Actor, id uuid.UUID, edit service.SuggestionEdit) (domain.RouteSuggestion, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

// IncidentServicer defines the incident operations the handlers depend on.
type IncidentServicer interface {
	Submit(ctx context.Context, actor domain.Actor, in service.IncidentInput) (domain.IncidentReport, error)
	Feed(ctx context.Context, filter domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error)
}

// LedgerServicer defines the reputation reads the handlers depend on.
type LedgerServicer interface {
	Balance(ctx context.Context, accountID string) (domain.ReputationAccount, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.ReputationAccount, error)
}

// SearchServicer defines the route search operation.
type SearchServicer interface {
	Search(ctx context.Context, q matching.Query) (matching.Result, error)
}

// StatsServicer defines the administrator dashboard read.
type StatsServicer interface {
	Stats(ctx context.Context, actor domain.Actor) (domain.Stats, error)
}

// Services groups the Server dependencies. Any field may be nil for tests
// that only exercise the routes they need.
type Services struct {
	Suggestions SuggestionServicer
	Incidents   IncidentServicer
	Ledger      LedgerServicer
	Search      SearchServicer
	Stats       StatsServicer
}

// Server holds the service dependencies of every endpoint.
type Server struct {
	suggestions SuggestionServicer
	incidents   IncidentServicer
	ledger      LedgerServicer
	search      SearchServicer
	stats       StatsServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svcs Services) *Server {
	return &Server{
		suggestions: svcs.Suggestions,
		incidents:   svcs.Incidents,
		ledger:      svcs.Ledger,
		search:      svcs.Search,
		stats:       svcs.Stats,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{})
}

// Routes returns a router with every endpoint mounted. The caller adds
// cross-cutting middleware (request id, logging, identity) around it.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/routes", s.SearchRoutes)
	r.Post("/suggestions", s.SubmitSuggestion)

	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", s.ListIncidents)
		r.Post("/", s.SubmitIncident)
	})

	r.Route("/reputation", func(r chi.Router) {
		r.Get("/leaderboard", s.GetLeaderboard)
		r.Get("/{accountId}", s.GetBalance)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", s.GetStats)
		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", s.ListSuggestions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSuggestion)
				r.Patch("/", s.EditSuggestion)
				r.Delete("/", s.DeleteSuggestion)
				r.Post("/moderation", s.ModerateSuggestion)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "not_found", "no such endpoint", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", "")
	})

	return r
}
