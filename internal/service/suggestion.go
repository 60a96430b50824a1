package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/itinerary"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/internal/views"
)

// SuggestionInput is a raw route suggestion as submitted by a commuter.
// Numeric fields hold unparsed text; empty means unknown.
type SuggestionInput struct {
	Origin                   string
	Destination              string
	Stops                    []itinerary.Stop
	EstimatedTotalFare       string
	EstimatedDurationMinutes string
}

// SuggestionEdit is an administrator's bulk edit. Nil fields are untouched.
// Stops, when supplied, replace the itinerary and are normalized like a new
// submission; VehicleTypes is then re-derived unless supplied too. A supplied
// but blank estimate resets it to unknown.
type SuggestionEdit struct {
	Origin                   *string
	Destination              *string
	Stops                    *[]itinerary.Stop
	VehicleTypes             *[]string
	EstimatedTotalFare       *string
	EstimatedDurationMinutes *string
	Status                   *string
}

// SuggestionService implements submission and moderation of route suggestions.
type SuggestionService struct {
	repo     repo.SuggestionRepo
	admins   Authorizer
	ledger   Awarder
	stale    Invalidator
	observer Observer
}

// NewSuggestionService constructs a SuggestionService. stale and observer
// may be nil.
func NewSuggestionService(r repo.SuggestionRepo, admins Authorizer, ledger Awarder, stale Invalidator, observer Observer) *SuggestionService {
	return &SuggestionService{
		repo:     r,
		admins:   admins,
		ledger:   ledger,
		stale:    orNoopInvalidator(stale),
		observer: observer,
	}
}

// Submit normalizes in, stores it as pending, then awards the contributor.
// Nothing is written when validation fails. The award is best-effort and
// never undoes the stored suggestion.
func (s *SuggestionService) Submit(ctx context.Context, actor domain.Actor, in SuggestionInput) (domain.RouteSuggestion, error) {
	sug, err := buildSuggestion(in)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Submit: %w", err)
	}
	if !actor.IsAnonymous() {
		id := actor.ID()
		sug.ContributorID = &id
	}

	created, err := s.repo.Create(ctx, sug)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Submit: %w", err)
	}

	s.ledger.AwardFor(ctx, actor)
	s.stale.MarkStale(ctx, views.ModerationQueue)
	if s.observer != nil {
		detach(ctx, "route_suggested", func(ctx context.Context) { s.observer.RouteSuggested(ctx, created) })
	}
	return created, nil
}

func buildSuggestion(in SuggestionInput) (domain.RouteSuggestion, error) {
	origin, err := requiredText("origin", in.Origin)
	if err != nil {
		return domain.RouteSuggestion{}, err
	}
	destination, err := requiredText("destination", in.Destination)
	if err != nil {
		return domain.RouteSuggestion{}, err
	}
	normalized, err := itinerary.Normalize(in.Stops)
	if err != nil {
		return domain.RouteSuggestion{}, err
	}
	fare, err := itinerary.ParseAmount("estimated_total_fare", in.EstimatedTotalFare)
	if err != nil {
		return domain.RouteSuggestion{}, err
	}
	minutes, err := itinerary.ParseMinutes("estimated_duration_minutes", in.EstimatedDurationMinutes)
	if err != nil {
		return domain.RouteSuggestion{}, err
	}

	return domain.RouteSuggestion{
		Origin:                   origin,
		Destination:              destination,
		VehicleTypes:             normalized.VehicleTypes,
		Itinerary:                normalized.Legs,
		EstimatedTotalFare:       fare,
		EstimatedDurationMinutes: minutes,
		Status:                   domain.StatusPending,
	}, nil
}

// Get returns one suggestion. Administrator only.
func (s *SuggestionService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.RouteSuggestion, error) {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Get: %w", err)
	}
	sug, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Get: %w", err)
	}
	return sug, nil
}

// Queue lists suggestions newest first, optionally filtered. Administrator only.
func (s *SuggestionService) Queue(ctx context.Context, actor domain.Actor, filter domain.SuggestionFilter, p domain.PaginationParams) (domain.Page[domain.RouteSuggestion], error) {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return domain.Page[domain.RouteSuggestion]{}, fmt.Errorf("service.SuggestionService.Queue: %w", err)
	}
	items, total, err := s.repo.ListPaged(ctx, filter, p)
	if err != nil {
		return domain.Page[domain.RouteSuggestion]{}, fmt.Errorf("service.SuggestionService.Queue: %w", err)
	}
	return domain.Page[domain.RouteSuggestion]{Items: items, Total: total, Params: p}, nil
}

// Moderate moves a suggestion to approved or rejected.
//
// Checks run in a fixed order: the actor must be an administrator, then
// status must be approved or rejected, then the suggestion must exist.
// Moderating to the current status succeeds without writing.
func (s *SuggestionService) Moderate(ctx context.Context, actor domain.Actor, id uuid.UUID, status string) (domain.RouteSuggestion, error) {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Moderate: %w", err)
	}

	target, ok := domain.ParseStatus(status)
	if !ok || target == domain.StatusPending {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Moderate: %w",
			domain.NewFieldError("status", "status must be approved or rejected"))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Moderate: %w", err)
	}
	if current.Status == target {
		return current, nil
	}

	updated, err := s.repo.SetStatus(ctx, id, target)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Moderate: %w", err)
	}
	s.stale.MarkStale(ctx, views.RouteListing, views.ModerationQueue)
	return updated, nil
}

// Edit applies an administrator's partial update in one atomic write.
// An edit that supplies no fields returns the stored suggestion unchanged.
func (s *SuggestionService) Edit(ctx context.Context, actor domain.Actor, id uuid.UUID, edit SuggestionEdit) (domain.RouteSuggestion, error) {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Edit: %w", err)
	}

	patch, err := buildPatch(edit)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Edit: %w", err)
	}
	if patch.IsEmpty() {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Edit: %w", err)
		}
		return current, nil
	}

	updated, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.SuggestionService.Edit: %w", err)
	}
	s.stale.MarkStale(ctx, views.RouteListing, views.ModerationQueue)
	return updated, nil
}

func buildPatch(edit SuggestionEdit) (domain.SuggestionPatch, error) {
	var patch domain.SuggestionPatch

	if edit.Origin != nil {
		v, err := requiredText("origin", *edit.Origin)
		if err != nil {
			return patch, err
		}
		patch.Origin = &v
	}
	if edit.Destination != nil {
		v, err := requiredText("destination", *edit.Destination)
		if err != nil {
			return patch, err
		}
		patch.Destination = &v
	}
	if edit.Stops != nil {
		normalized, err := itinerary.Normalize(*edit.Stops)
		if err != nil {
			return patch, err
		}
		patch.Itinerary = &normalized.Legs
		patch.VehicleTypes = &normalized.VehicleTypes
	}
	if edit.VehicleTypes != nil {
		cleaned := itinerary.CleanVehicleTypes(*edit.VehicleTypes)
		patch.VehicleTypes = &cleaned
	}
	if edit.EstimatedTotalFare != nil {
		fare, err := itinerary.ParseAmount("estimated_total_fare", *edit.EstimatedTotalFare)
		if err != nil {
			return patch, err
		}
		patch.EstimatedTotalFare = fare
		patch.ClearEstimatedTotalFare = fare == nil
	}
	if edit.EstimatedDurationMinutes != nil {
		minutes, err := itinerary.ParseMinutes("estimated_duration_minutes", *edit.EstimatedDurationMinutes)
		if err != nil {
			return patch, err
		}
		patch.EstimatedDurationMinutes = minutes
		patch.ClearEstimatedDurationMinutes = minutes == nil
	}
	if edit.Status != nil {
		status, ok := domain.ParseStatus(*edit.Status)
		if !ok {
			return patch, domain.NewFieldError("status", "status must be pending, approved or rejected")
		}
		patch.Status = &status
	}
	return patch, nil
}

// Delete permanently removes a suggestion in any state. Administrator only.
func (s *SuggestionService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireAdmin(ctx, s.admins, actor); err != nil {
		return fmt.Errorf("service.SuggestionService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.SuggestionService.Delete: %w", err)
	}
	s.stale.MarkStale(ctx, views.RouteListing, views.ModerationQueue)
	return nil
}

func requiredText(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.NewFieldError(field, field+" is required")
	}
	return v, nil
}
