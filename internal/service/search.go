package service

import (
	"context"
	"fmt"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/matching"
)

// Catalogue supplies the routes visible to search. *catalog.Cache satisfies it.
type Catalogue interface {
	Routes(ctx context.Context) ([]domain.Route, error)
}

// SearchService answers route searches against the catalogue.
type SearchService struct {
	catalogue Catalogue
	engine    *matching.Engine
}

// NewSearchService constructs a SearchService.
func NewSearchService(catalogue Catalogue, engine *matching.Engine) *SearchService {
	return &SearchService{catalogue: catalogue, engine: engine}
}

// Search loads the catalogue and filters it by q.
func (s *SearchService) Search(ctx context.Context, q matching.Query) (matching.Result, error) {
	routes, err := s.catalogue.Routes(ctx)
	if err != nil {
		return matching.Result{}, fmt.Errorf("service.SearchService.Search: %w", err)
	}
	return s.engine.Match(routes, q), nil
}
