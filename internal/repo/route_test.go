package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
)

func routeFixture() domain.Route {
	fare := 500.0
	minutes := 40
	return domain.Route{
		Origin:       "Mile 1",
		Destination:  "Choba",
		VehicleTypes: []string{"Bus", "Keke"},
		Itinerary: []domain.Leg{
			{PositionTag: domain.TagStart, Location: "Mile 1 Park", Vehicle: "Bus", Fare: &fare},
			{PositionTag: domain.TagEnd, Location: "Choba Junction"},
		},
		EstimatedTotalFare:       &fare,
		EstimatedDurationMinutes: &minutes,
	}
}

func TestRouteRepo_Create(t *testing.T) {
	r := repo.NewRouteRepo(newTestTx(t))

	input := routeFixture()
	got, err := r.Create(context.Background(), input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, domain.SourceCurated, got.Source)
	assert.Equal(t, input.VehicleTypes, got.VehicleTypes)
	assert.Equal(t, input.Itinerary, got.Itinerary)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRouteRepo_List_SeededAndInsertionOrder(t *testing.T) {
	r := repo.NewRouteRepo(newTestTx(t))
	ctx := context.Background()

	before, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, before, "seed migration should provide curated routes")

	created, err := r.Create(ctx, routeFixture())
	require.NoError(t, err)

	after, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, created.ID, after[len(after)-1].ID, "newest route lists last")
}
