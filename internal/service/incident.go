package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/internal/views"
)

// IncidentInput is a raw road incident report.
type IncidentInput struct {
	Type         string
	LocationText string
	Description  string
}

// IncidentService records and lists road incident reports.
type IncidentService struct {
	repo     repo.IncidentRepo
	ledger   Awarder
	stale    Invalidator
	observer Observer
}

// NewIncidentService constructs an IncidentService. stale and observer may be nil.
func NewIncidentService(r repo.IncidentRepo, ledger Awarder, stale Invalidator, observer Observer) *IncidentService {
	return &IncidentService{repo: r, ledger: ledger, stale: orNoopInvalidator(stale), observer: observer}
}

// Submit validates and stores a report, then awards the reporter.
// Reports are visible in the feed immediately; there is no moderation.
func (s *IncidentService) Submit(ctx context.Context, actor domain.Actor, in IncidentInput) (domain.IncidentReport, error) {
	kind, ok := domain.ParseIncidentType(in.Type)
	if !ok {
		return domain.IncidentReport{}, fmt.Errorf("service.IncidentService.Submit: %w",
			domain.NewFieldError("type", "unknown incident type"))
	}
	description, err := requiredText("description", in.Description)
	if err != nil {
		return domain.IncidentReport{}, fmt.Errorf("service.IncidentService.Submit: %w", err)
	}

	report := domain.IncidentReport{
		Type:         kind,
		LocationText: strings.TrimSpace(in.LocationText),
		Description:  description,
	}
	if !actor.IsAnonymous() {
		id := actor.ID()
		report.ReporterID = &id
	}

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		return domain.IncidentReport{}, fmt.Errorf("service.IncidentService.Submit: %w", err)
	}

	s.ledger.AwardFor(ctx, actor)
	s.stale.MarkStale(ctx, views.IncidentFeed)
	if s.observer != nil {
		detach(ctx, "incident_reported", func(ctx context.Context) { s.observer.IncidentReported(ctx, created) })
	}
	return created, nil
}

// Feed lists reports newest first.
func (s *IncidentService) Feed(ctx context.Context, filter domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error) {
	items, total, err := s.repo.ListPaged(ctx, filter, p)
	if err != nil {
		return domain.Page[domain.IncidentReport]{}, fmt.Errorf("service.IncidentService.Feed: %w", err)
	}
	return domain.Page[domain.IncidentReport]{Items: items, Total: total, Params: p}, nil
}
