// Package repo contains all database access logic for the route pipeline.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, pgx.Tx and
// pgxmock pools. Accepting it instead of *pgxpool.Pool lets integration tests
// pass a transaction that is rolled back after each test, and unit tests pass
// a mock.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// encodeLegs renders an itinerary as JSON for a JSONB column.
// A nil itinerary is stored as an empty array, never NULL.
func encodeLegs(legs []domain.Leg) ([]byte, error) {
	if legs == nil {
		legs = []domain.Leg{}
	}
	b, err := json.Marshal(legs)
	if err != nil {
		return nil, fmt.Errorf("encode itinerary: %w", err)
	}
	return b, nil
}

func decodeLegs(raw []byte) ([]domain.Leg, error) {
	legs := []domain.Leg{}
	if len(raw) == 0 {
		return legs, nil
	}
	if err := json.Unmarshal(raw, &legs); err != nil {
		return nil, fmt.Errorf("decode itinerary: %w", err)
	}
	return legs, nil
}

// emptyIfNil keeps TEXT[] columns NOT NULL.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
