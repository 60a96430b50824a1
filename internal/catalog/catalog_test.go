package catalog_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/catalog"
	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
)

// ---- mocks -----------------------------------------------------------------

type mockRouteRepo struct {
	list func(ctx context.Context) ([]domain.Route, error)
}

func (m *mockRouteRepo) Create(_ context.Context, r domain.Route) (domain.Route, error) {
	return r, nil
}
func (m *mockRouteRepo) List(ctx context.Context) ([]domain.Route, error) { return m.list(ctx) }

var _ repo.RouteRepo = (*mockRouteRepo)(nil)

// approvedOnly implements just ListApproved; the rest of repo.SuggestionRepo
// is embedded and panics if the catalogue ever calls it.
type approvedOnly struct {
	repo.SuggestionRepo
	listApproved func(ctx context.Context) ([]domain.RouteSuggestion, error)
}

func (m *approvedOnly) ListApproved(ctx context.Context) ([]domain.RouteSuggestion, error) {
	return m.listApproved(ctx)
}

type countingSource struct {
	calls  atomic.Int32
	routes []domain.Route
	err    error
}

func (s *countingSource) Load(context.Context) ([]domain.Route, error) {
	s.calls.Add(1)
	return s.routes, s.err
}

// ---- StoreSource -----------------------------------------------------------

func TestStoreSource_CuratedThenApproved(t *testing.T) {
	curatedID, communityID := uuid.New(), uuid.New()
	src := catalog.NewStoreSource(
		&mockRouteRepo{list: func(context.Context) ([]domain.Route, error) {
			return []domain.Route{{ID: curatedID, Source: domain.SourceCurated, Origin: "Rumuokoro"}}, nil
		}},
		&approvedOnly{listApproved: func(context.Context) ([]domain.RouteSuggestion, error) {
			return []domain.RouteSuggestion{{ID: communityID, Origin: "Mile 1", Status: domain.StatusApproved}}, nil
		}},
	)

	got, err := src.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, curatedID, got[0].ID)
	assert.Equal(t, communityID, got[1].ID)
	assert.Equal(t, domain.SourceCommunity, got[1].Source)
}

func TestStoreSource_StoreError(t *testing.T) {
	boom := errors.New("db down")
	src := catalog.NewStoreSource(
		&mockRouteRepo{list: func(context.Context) ([]domain.Route, error) { return nil, boom }},
		&approvedOnly{},
	)

	_, err := src.Load(context.Background())

	assert.ErrorIs(t, err, boom)
}

// ---- Cache -----------------------------------------------------------------

func TestCache_ServesCachedCopy(t *testing.T) {
	src := &countingSource{routes: []domain.Route{{Origin: "A"}}}
	c := catalog.NewCache(src, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := c.Routes(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCache_EvictForcesReload(t *testing.T) {
	src := &countingSource{routes: []domain.Route{{Origin: "A"}}}
	c := catalog.NewCache(src, time.Minute)

	_, err := c.Routes(context.Background())
	require.NoError(t, err)
	c.Evict()
	_, err = c.Routes(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	src := &countingSource{}
	c := catalog.NewCache(src, 20*time.Millisecond)

	_, _ = c.Routes(context.Background())
	time.Sleep(40 * time.Millisecond)
	_, _ = c.Routes(context.Background())

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	src := &countingSource{}
	c := catalog.NewCache(src, 0)

	_, _ = c.Routes(context.Background())
	_, _ = c.Routes(context.Background())
	c.Evict()

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("transient")}
	c := catalog.NewCache(src, time.Minute)

	_, err := c.Routes(context.Background())
	require.Error(t, err)
	src.err = nil
	_, err = c.Routes(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, src.calls.Load())
}

// evictingSource evicts the cache in the middle of its own load, as a
// concurrent approval would.
type evictingSource struct {
	cache *catalog.Cache
	calls atomic.Int32
}

func (s *evictingSource) Load(context.Context) ([]domain.Route, error) {
	if s.calls.Add(1) == 1 {
		s.cache.Evict()
	}
	return nil, nil
}

func TestCache_LoadRacingEvictIsNotCached(t *testing.T) {
	src := &evictingSource{}
	c := catalog.NewCache(src, time.Minute)
	src.cache = c

	_, _ = c.Routes(context.Background())
	_, _ = c.Routes(context.Background())

	assert.EqualValues(t, 2, src.calls.Load(), "load interrupted by an eviction must not be cached")
}
