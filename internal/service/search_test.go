package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/matching"
	"github.com/pkordes/dropalong/backend/internal/service"
)

type catalogueFunc func(ctx context.Context) ([]domain.Route, error)

func (f catalogueFunc) Routes(ctx context.Context) ([]domain.Route, error) { return f(ctx) }

var _ service.Catalogue = catalogueFunc(nil)

func TestSearchService_Search(t *testing.T) {
	svc := service.NewSearchService(catalogueFunc(func(context.Context) ([]domain.Route, error) {
		return []domain.Route{
			{Origin: "Rumuokoro", Destination: "Choba", VehicleTypes: []string{"Bus"}},
			{Origin: "Mile 3", Destination: "Diobu", VehicleTypes: []string{"Keke"}},
		}, nil
	}), matching.NewEngine(0))

	got, err := svc.Search(context.Background(), matching.Query{Destination: "diobu"})

	require.NoError(t, err)
	require.Len(t, got.Routes, 1)
	assert.Equal(t, "Mile 3", got.Routes[0].Origin)
}

func TestSearchService_CatalogueError(t *testing.T) {
	boom := errors.New("db down")
	svc := service.NewSearchService(catalogueFunc(func(context.Context) ([]domain.Route, error) {
		return nil, boom
	}), matching.NewEngine(0))

	_, err := svc.Search(context.Background(), matching.Query{Origin: "x"})

	assert.ErrorIs(t, err, boom)
}
