package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// RouteRepo defines the persistence operations for the curated catalogue.
// The service layer depends on this interface, not the Postgres implementation,
// which allows the service to be unit-tested with a mock.
type RouteRepo interface {
	// Create inserts a curated route and returns the persisted record (with
	// DB-generated id and created_at populated).
	Create(ctx context.Context, route domain.Route) (domain.Route, error)

	// List returns every curated route in insertion order (created_at, id).
	List(ctx context.Context) ([]domain.Route, error)
}

// pgRouteRepo is the Postgres implementation of RouteRepo.
type pgRouteRepo struct {
	db db
}

// NewRouteRepo constructs a RouteRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRouteRepo(db db) RouteRepo {
	return &pgRouteRepo{db: db}
}

const routeColumns = `id, origin, destination, vehicle_types, itinerary,
		       estimated_total_fare, estimated_duration_minutes, created_at`

// Create inserts a new curated route and returns the full persisted record.
func (r *pgRouteRepo) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	const q = `
		INSERT INTO routes (origin, destination, vehicle_types, itinerary,
		                    estimated_total_fare, estimated_duration_minutes)
		VALUES (@origin, @destination, @vehicle_types, @itinerary::jsonb,
		        @estimated_total_fare, @estimated_duration_minutes)
		RETURNING ` + routeColumns

	legs, err := encodeLegs(route.Itinerary)
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}

	args := pgx.NamedArgs{
		"origin":                     route.Origin,
		"destination":                route.Destination,
		"vehicle_types":              emptyIfNil(route.VehicleTypes),
		"itinerary":                  legs,
		"estimated_total_fare":       route.EstimatedTotalFare, // nil becomes NULL
		"estimated_duration_minutes": route.EstimatedDurationMinutes,
	}

	result, err := scanRoute(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}
	return result, nil
}

// List returns all curated routes, oldest first.
func (r *pgRouteRepo) List(ctx context.Context) ([]domain.Route, error) {
	const q = `
		SELECT ` + routeColumns + `
		FROM routes
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.List: %w", err)
	}
	defer rows.Close()

	routes := []domain.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RouteRepo.List: scan: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.List: rows: %w", err)
	}
	return routes, nil
}

// scanRoute maps a single database row into a curated domain.Route.
func scanRoute(s scanner) (domain.Route, error) {
	var (
		route domain.Route
		legs  []byte
	)
	err := s.Scan(&route.ID, &route.Origin, &route.Destination, &route.VehicleTypes, &legs,
		&route.EstimatedTotalFare, &route.EstimatedDurationMinutes, &route.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Route{}, domain.ErrNotFound
		}
		return domain.Route{}, err
	}

	route.Source = domain.SourceCurated
	if route.Itinerary, err = decodeLegs(legs); err != nil {
		return domain.Route{}, err
	}
	return route, nil
}
