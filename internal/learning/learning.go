// Package learning records contribution patterns as side observations.
// Observers never influence the result of the operation that triggered them.
package learning

import (
	"context"
	"log/slog"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// LogObserver writes one structured record per contribution.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer that logs to logger (slog.Default when nil).
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// RouteSuggested records the shape of a newly submitted route.
func (o *LogObserver) RouteSuggested(ctx context.Context, s domain.RouteSuggestion) {
	switches := 0
	for _, leg := range s.Itinerary {
		if leg.PositionTag == domain.TagSwitch {
			switches++
		}
	}
	o.logger.InfoContext(ctx, "learning: route pattern",
		"suggestion_id", s.ID.String(),
		"origin", s.Origin,
		"destination", s.Destination,
		"legs", len(s.Itinerary),
		"switches", switches,
		"vehicles", s.VehicleSummary(),
		"guest", s.IsGuest(),
	)
}

// Impact classes of an incident for route planning.
const (
	ImpactRoutePenalty = "route_penalty" // avoid the road when planning
	ImpactETABuffer    = "eta_buffer"    // keep the road, pad travel time
	ImpactNone         = "none"
)

// ImpactOf classifies an incident type.
func ImpactOf(t domain.IncidentType) string {
	switch t {
	case domain.IncidentPolice, domain.IncidentBlocked:
		return ImpactRoutePenalty
	case domain.IncidentTraffic, domain.IncidentSlow:
		return ImpactETABuffer
	default:
		return ImpactNone
	}
}

// IncidentReported records an incident report and its impact class.
func (o *LogObserver) IncidentReported(ctx context.Context, r domain.IncidentReport) {
	o.logger.InfoContext(ctx, "learning: incident pattern",
		"incident_id", r.ID.String(),
		"type", string(r.Type),
		"impact", ImpactOf(r.Type),
		"location", r.LocationText,
		"hour", r.CreatedAt.Hour(),
	)
}
