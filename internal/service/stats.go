package service

import (
	"context"
	"fmt"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
)

// StatsService builds the administrator dashboard summary.
type StatsService struct {
	suggestions repo.SuggestionRepo
	incidents   repo.IncidentRepo
	reputation  repo.ReputationRepo
	admins      Authorizer
}

// NewStatsService constructs a StatsService.
func NewStatsService(suggestions repo.SuggestionRepo, incidents repo.IncidentRepo, reputation repo.ReputationRepo, admins Authorizer) *StatsService {
	return &StatsService{suggestions: suggestions, incidents: incidents, reputation: reputation, admins: admins}
}

// Stats returns suggestion counts per status plus incident and contributor
// totals. Administrator only.
func (s *StatsService) Stats(ctx context.Context, actor domain.Actor) (domain.Stats, error) {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}

	byStatus, err := s.suggestions.CountByStatus(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}
	incidents, err := s.incidents.Count(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}
	contributors, err := s.reputation.Count(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}

	return domain.Stats{
		PendingSuggestions:  byStatus[domain.StatusPending],
		ApprovedSuggestions: byStatus[domain.StatusApproved],
		RejectedSuggestions: byStatus[domain.StatusRejected],
		Incidents:           incidents,
		Contributors:        contributors,
	}, nil
}
