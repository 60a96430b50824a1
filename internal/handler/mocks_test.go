package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/handler"
	"github.com/pkordes/dropalong/backend/internal/identity"
	"github.com/pkordes/dropalong/backend/internal/matching"
	"github.com/pkordes/dropalong/backend/internal/service"
)

// Test doubles for the handler Servicer interfaces.
// Set only the method fields your test needs.

type mockSuggestionServicer struct {
	submit   func(ctx context.Context, actor domain.Actor, in service.SuggestionInput) (domain.RouteSuggestion, error)
	get      func(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.RouteSuggestion, error)
	queue    func(ctx context.Context, actor domain.Actor, f domain.SuggestionFilter, p domain.PaginationParams) (domain.Page[domain.RouteSuggestion], error)
	moderate func(ctx context.Context, actor domain.Actor, id uuid.UUID, status string) (domain.RouteSuggestion, error)
	edit     func(ctx context.Context, actor domain.Actor, id uuid.UUID, e service.SuggestionEdit) (domain.RouteSuggestion, error)
	delete   func(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

func (m *mockSuggestionServicer) Submit(ctx context.Context, a domain.Actor, in service.SuggestionInput) (domain.RouteSuggestion, error) {
	return m.submit(ctx, a, in)
}
func (m *mockSuggestionServicer) Get(ctx context.Context, a domain.Actor, id uuid.UUID) (domain.RouteSuggestion, error) {
	return m.get(ctx, a, id)
}
func (m *mockSuggestionServicer) Queue(ctx context.Context, a domain.Actor, f domain.SuggestionFilter, p domain.PaginationParams) (domain.Page[domain.RouteSuggestion], error) {
	return m.queue(ctx, a, f, p)
}
func (m *mockSuggestionServicer) Moderate(ctx context.Context, a domain.Actor, id uuid.UUID, status string) (domain.RouteSuggestion, error) {
	return m.moderate(ctx, a, id, status)
}
func (m *mockSuggestionServicer) Edit(ctx context.Context, a domain.Actor, id uuid.UUID, e service.SuggestionEdit) (domain.RouteSuggestion, error) {
	return m.edit(ctx, a, id, e)
}
func (m *mockSuggestionServicer) Delete(ctx context.Context, a domain.Actor, id uuid.UUID) error {
	return m.delete(ctx, a, id)
}

type mockIncidentServicer struct {
	submit func(ctx context.Context, actor domain.Actor, in service.IncidentInput) (domain.IncidentReport, error)
	feed   func(ctx context.Context, f domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error)
}

func (m *mockIncidentServicer) Submit(ctx context.Context, a domain.Actor, in service.IncidentInput) (domain.IncidentReport, error) {
	return m.submit(ctx, a, in)
}
func (m *mockIncidentServicer) Feed(ctx context.Context, f domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error) {
	return m.feed(ctx, f, p)
}

type mockLedgerServicer struct {
	balance     func(ctx context.Context, accountID string) (domain.ReputationAccount, error)
	leaderboard func(ctx context.Context, limit int) ([]domain.ReputationAccount, error)
}

func (m *mockLedgerServicer) Balance(ctx context.Context, accountID string) (domain.ReputationAccount, error) {
	return m.balance(ctx, accountID)
}
func (m *mockLedgerServicer) Leaderboard(ctx context.Context, limit int) ([]domain.ReputationAccount, error) {
	return m.leaderboard(ctx, limit)
}

type mockSearchServicer struct {
	search func(ctx context.Context, q matching.Query) (matching.Result, error)
}

func (m *mockSearchServicer) Search(ctx context.Context, q matching.Query) (matching.Result, error) {
	return m.search(ctx, q)
}

type mockStatsServicer struct {
	stats func(ctx context.Context, actor domain.Actor) (domain.Stats, error)
}

func (m *mockStatsServicer) Stats(ctx context.Context, a domain.Actor) (domain.Stats, error) {
	return m.stats(ctx, a)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.SuggestionServicer = (*mockSuggestionServicer)(nil)
	_ handler.IncidentServicer   = (*mockIncidentServicer)(nil)
	_ handler.LedgerServicer     = (*mockLedgerServicer)(nil)
	_ handler.SearchServicer     = (*mockSearchServicer)(nil)
	_ handler.StatsServicer      = (*mockStatsServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server into its router and resolves every request
// as actor, standing in for identity.Middleware.
func newHTTPHandler(svcs handler.Services, actor domain.Actor) http.Handler {
	routes := handler.NewServer(svcs).Routes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func decodeError(t *testing.T, body *bytes.Buffer) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}

func ptr[T any](v T) *T { return &v }

func suggestionFixture() domain.RouteSuggestion {
	fare := 500.0
	return domain.RouteSuggestion{
		ID:           uuid.New(),
		Origin:       "Mile 1",
		Destination:  "Rumuokoro",
		VehicleTypes: []string{"Bus"},
		Itinerary: []domain.Leg{
			{PositionTag: domain.TagStart, Location: "Mile 1 Park", Vehicle: "Bus", Fare: &fare},
			{PositionTag: domain.TagEnd, Location: "Rumuokoro Junction"},
		},
		EstimatedTotalFare: &fare,
		Status:             domain.StatusPending,
	}
}
