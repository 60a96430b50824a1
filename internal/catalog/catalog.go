// Package catalog assembles the searchable route catalogue and keeps a cached
// copy of it in process.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
)

// Source loads the full catalogue in presentation order.
type Source interface {
	Load(ctx context.Context) ([]domain.Route, error)
}

// StoreSource reads curated routes and approved suggestions from the store.
type StoreSource struct {
	routes      repo.RouteRepo
	suggestions repo.SuggestionRepo
}

// NewStoreSource returns a Source backed by the route and suggestion repos.
func NewStoreSource(routes repo.RouteRepo, suggestions repo.SuggestionRepo) *StoreSource {
	return &StoreSource{routes: routes, suggestions: suggestions}
}

// Load returns curated routes in insertion order followed by approved
// community suggestions in insertion order.
func (s *StoreSource) Load(ctx context.Context) ([]domain.Route, error) {
	curated, err := s.routes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.StoreSource.Load: %w", err)
	}
	approved, err := s.suggestions.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.StoreSource.Load: %w", err)
	}

	out := make([]domain.Route, 0, len(curated)+len(approved))
	out = append(out, curated...)
	for _, sug := range approved {
		out = append(out, domain.RouteFromSuggestion(sug))
	}
	return out, nil
}

const cacheKey = "catalogue"

// Cache memoises a Source for a fixed TTL. Evict drops the cached copy so
// the next Routes call reloads.
type Cache struct {
	source Source
	ttl    time.Duration
	store  gcache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewCache wraps source. A ttl of zero or less disables caching.
func NewCache(source Source, ttl time.Duration) *Cache {
	c := &Cache{source: source, ttl: ttl}
	if ttl > 0 {
		c.store = gcache.New(1).LRU().Expiration(ttl).Build()
	}
	return c
}

// Routes returns the catalogue. The returned slice is shared and must not be
// modified.
func (c *Cache) Routes(ctx context.Context) ([]domain.Route, error) {
	if c.store == nil {
		return c.source.Load(ctx)
	}

	if v, err := c.store.Get(cacheKey); err == nil {
		return v.([]domain.Route), nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		return nil, fmt.Errorf("catalog.Cache.Routes: %w", err)
	}

	gen := c.currentGeneration()
	routes, err := c.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// An eviction during the load means routes may predate the change that
	// caused it; serve them once but do not cache them.
	if gen == c.generation {
		_ = c.store.Set(cacheKey, routes)
	}
	return routes, nil
}

// Evict discards the cached catalogue.
func (c *Cache) Evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.store != nil {
		c.store.Remove(cacheKey)
	}
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
