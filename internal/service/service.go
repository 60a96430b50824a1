// Package service contains the business logic for the route contribution
// pipeline. Services validate inputs, enforce authorization and moderation
// rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/views"
)

// Authorizer answers whether an account holds the administrator capability.
// repo.AdminRepo satisfies it.
type Authorizer interface {
	IsAdministrator(ctx context.Context, accountID string) (bool, error)
}

// Invalidator is told which read views a write has made stale.
// *views.Bus satisfies it.
type Invalidator interface {
	MarkStale(ctx context.Context, vs ...views.View)
}

// Observer receives contribution events for pattern learning. Calls run
// detached from the request and their outcome is ignored.
type Observer interface {
	RouteSuggested(ctx context.Context, s domain.RouteSuggestion)
	IncidentReported(ctx context.Context, r domain.IncidentReport)
}

// Awarder grants contribution points. *LedgerService satisfies it.
type Awarder interface {
	AwardFor(ctx context.Context, actor domain.Actor)
}

type noopInvalidator struct{}

func (noopInvalidator) MarkStale(context.Context, ...views.View) {}

func orNoopInvalidator(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// requireAdmin returns domain.ErrUnauthorized unless actor is an identified
// administrator. Anonymous actors are rejected without a store lookup.
func requireAdmin(ctx context.Context, admins Authorizer, actor domain.Actor) error {
	if actor.IsAnonymous() {
		return domain.ErrUnauthorized
	}
	ok, err := admins.IsAdministrator(ctx, actor.ID())
	if err != nil {
		return fmt.Errorf("check administrator: %w", err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// detach runs fn on its own goroutine with a context that outlives the
// request. A panic in fn is logged and swallowed.
func detach(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "observer panicked", "observer", name, "panic", r)
			}
		}()
		fn(ctx)
	}()
}
