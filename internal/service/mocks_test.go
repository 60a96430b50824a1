package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/internal/service"
	"github.com/pkordes/dropalong/backend/internal/views"
)

// Hand-written test doubles. Each method is a function field: set only the
// ones your test needs; an unset field panics, which flags an unexpected call.

type mockSuggestionRepo struct {
	create        func(ctx context.Context, s domain.RouteSuggestion) (domain.RouteSuggestion, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.RouteSuggestion, error)
	listPaged     func(ctx context.Context, f domain.SuggestionFilter, p domain.PaginationParams) ([]domain.RouteSuggestion, int64, error)
	listApproved  func(ctx context.Context) ([]domain.RouteSuggestion, error)
	patch         func(ctx context.Context, id uuid.UUID, p domain.SuggestionPatch) (domain.RouteSuggestion, error)
	setStatus     func(ctx context.Context, id uuid.UUID, s domain.Status) (domain.RouteSuggestion, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	countByStatus func(ctx context.Context) (map[domain.Status]int64, error)
}

func (m *mockSuggestionRepo) Create(ctx context.Context, s domain.RouteSuggestion) (domain.RouteSuggestion, error) {
	return m.create(ctx, s)
}
func (m *mockSuggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.RouteSuggestion, error) {
	return m.getByID(ctx, id)
}
func (m *mockSuggestionRepo) ListPaged(ctx context.Context, f domain.SuggestionFilter, p domain.PaginationParams) ([]domain.RouteSuggestion, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockSuggestionRepo) ListApproved(ctx context.Context) ([]domain.RouteSuggestion, error) {
	return m.listApproved(ctx)
}
func (m *mockSuggestionRepo) Patch(ctx context.Context, id uuid.UUID, p domain.SuggestionPatch) (domain.RouteSuggestion, error) {
	return m.patch(ctx, id, p)
}
func (m *mockSuggestionRepo) SetStatus(ctx context.Context, id uuid.UUID, s domain.Status) (domain.RouteSuggestion, error) {
	return m.setStatus(ctx, id, s)
}
func (m *mockSuggestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockSuggestionRepo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	return m.countByStatus(ctx)
}

var _ repo.SuggestionRepo = (*mockSuggestionRepo)(nil)

type mockIncidentRepo struct {
	create    func(ctx context.Context, r domain.IncidentReport) (domain.IncidentReport, error)
	listPaged func(ctx context.Context, f domain.IncidentFilter, p domain.PaginationParams) ([]domain.IncidentReport, int64, error)
	count     func(ctx context.Context) (int64, error)
}

func (m *mockIncidentRepo) Create(ctx context.Context, r domain.IncidentReport) (domain.IncidentReport, error) {
	return m.create(ctx, r)
}
func (m *mockIncidentRepo) ListPaged(ctx context.Context, f domain.IncidentFilter, p domain.PaginationParams) ([]domain.IncidentReport, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockIncidentRepo) Count(ctx context.Context) (int64, error) { return m.count(ctx) }

var _ repo.IncidentRepo = (*mockIncidentRepo)(nil)

type mockReputationRepo struct {
	award func(ctx context.Context, accountID string, amount int64) (domain.ReputationAccount, error)
	get   func(ctx context.Context, accountID string) (domain.ReputationAccount, error)
	top   func(ctx context.Context, limit int) ([]domain.ReputationAccount, error)
	count func(ctx context.Context) (int64, error)
}

func (m *mockReputationRepo) Award(ctx context.Context, accountID string, amount int64) (domain.ReputationAccount, error) {
	return m.award(ctx, accountID, amount)
}
func (m *mockReputationRepo) Get(ctx context.Context, accountID string) (domain.ReputationAccount, error) {
	return m.get(ctx, accountID)
}
func (m *mockReputationRepo) Top(ctx context.Context, limit int) ([]domain.ReputationAccount, error) {
	return m.top(ctx, limit)
}
func (m *mockReputationRepo) Count(ctx context.Context) (int64, error) { return m.count(ctx) }

var _ repo.ReputationRepo = (*mockReputationRepo)(nil)

// admins is an Authorizer backed by a fixed set of account ids.
type admins map[string]bool

func (a admins) IsAdministrator(_ context.Context, id string) (bool, error) {
	return a[id], nil
}

var _ service.Authorizer = admins(nil)

type failingAuthorizer struct{ err error }

func (f failingAuthorizer) IsAdministrator(context.Context, string) (bool, error) {
	return false, f.err
}

// recordingAwarder counts AwardFor calls per actor id ("" for anonymous).
type recordingAwarder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingAwarder) AwardFor(_ context.Context, actor domain.Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, actor.ID())
}

var _ service.Awarder = (*recordingAwarder)(nil)

// recordingInvalidator keeps every view it was told about, in order.
type recordingInvalidator struct {
	mu    sync.Mutex
	views []views.View
}

func (r *recordingInvalidator) MarkStale(_ context.Context, vs ...views.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, vs...)
}

func (r *recordingInvalidator) seen() []views.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]views.View(nil), r.views...)
}

var _ service.Invalidator = (*recordingInvalidator)(nil)

// channelObserver forwards observations so tests can wait for the detached
// goroutine.
type channelObserver struct {
	routes    chan domain.RouteSuggestion
	incidents chan domain.IncidentReport
	panics    bool
}

func newChannelObserver() *channelObserver {
	return &channelObserver{
		routes:    make(chan domain.RouteSuggestion, 1),
		incidents: make(chan domain.IncidentReport, 1),
	}
}

func (o *channelObserver) RouteSuggested(ctx context.Context, s domain.RouteSuggestion) {
	if ctx.Err() != nil {
		panic("observer context must outlive the request")
	}
	o.routes <- s
	if o.panics {
		panic("boom")
	}
}

func (o *channelObserver) IncidentReported(_ context.Context, r domain.IncidentReport) {
	o.incidents <- r
}

var _ service.Observer = (*channelObserver)(nil)

func ptr[T any](v T) *T { return &v }
