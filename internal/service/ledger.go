package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/internal/views"
)

// DefaultAwardPoints is granted per accepted contribution when no amount is
// configured.
const DefaultAwardPoints = 1

// Leaderboard limits.
const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LedgerService owns contributor points.
type LedgerService struct {
	repo   repo.ReputationRepo
	stale  Invalidator
	amount int64
}

// NewLedgerService returns a LedgerService that grants amount points per
// contribution. A non-positive amount uses DefaultAwardPoints.
func NewLedgerService(r repo.ReputationRepo, stale Invalidator, amount int64) *LedgerService {
	if amount <= 0 {
		amount = DefaultAwardPoints
	}
	return &LedgerService{repo: r, stale: orNoopInvalidator(stale), amount: amount}
}

// Award adds amount points to accountID, creating the account on first use.
// The increment is a single atomic store operation.
func (s *LedgerService) Award(ctx context.Context, accountID string, amount int64) (domain.ReputationAccount, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.ReputationAccount{}, fmt.Errorf("service.LedgerService.Award: %w",
			domain.NewFieldError("account_id", "account id is required"))
	}
	if amount <= 0 {
		return domain.ReputationAccount{}, fmt.Errorf("service.LedgerService.Award: %w",
			domain.NewFieldError("amount", "amount must be positive"))
	}

	account, err := s.repo.Award(ctx, accountID, amount)
	if err != nil {
		return domain.ReputationAccount{}, fmt.Errorf("service.LedgerService.Award: %w", err)
	}
	s.stale.MarkStale(ctx, views.Leaderboard)
	return account, nil
}

// AwardFor grants the configured amount to actor for one accepted
// contribution. Anonymous actors earn nothing. Failures are logged and
// swallowed: the contribution has already been stored.
func (s *LedgerService) AwardFor(ctx context.Context, actor domain.Actor) {
	if actor.IsAnonymous() {
		return
	}
	if _, err := s.Award(ctx, actor.ID(), s.amount); err != nil {
		slog.WarnContext(ctx, "award points failed", "account_id", actor.ID(), "error", err)
	}
}

// Balance returns the account's points. An account that has never been
// awarded anything has zero points.
func (s *LedgerService) Balance(ctx context.Context, accountID string) (domain.ReputationAccount, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.ReputationAccount{}, fmt.Errorf("service.LedgerService.Balance: %w",
			domain.NewFieldError("account_id", "account id is required"))
	}

	account, err := s.repo.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ReputationAccount{AccountID: accountID}, nil
	}
	if err != nil {
		return domain.ReputationAccount{}, fmt.Errorf("service.LedgerService.Balance: %w", err)
	}
	return account, nil
}

// Leaderboard returns the top contributors, highest points first.
// limit is clamped to [1, 100]; zero or less means 10.
func (s *LedgerService) Leaderboard(ctx context.Context, limit int) ([]domain.ReputationAccount, error) {
	switch {
	case limit <= 0:
		limit = defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		limit = maxLeaderboardLimit
	}
	accounts, err := s.repo.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service.LedgerService.Leaderboard: %w", err)
	}
	return accounts, nil
}
