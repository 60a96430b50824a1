package domain

import (
	"time"

	"github.com/google/uuid"
)

// RouteSource says where a catalogue route came from.
type RouteSource string

const (
	SourceCurated   RouteSource = "curated"
	SourceCommunity RouteSource = "community"
)

// Route is an entry of the searchable catalogue: either a curated route or an
// approved community suggestion. Pending and rejected suggestions never become
// a Route.
type Route struct {
	ID                       uuid.UUID
	Source                   RouteSource
	Origin                   string
	Destination              string
	VehicleTypes             []string
	Itinerary                []Leg
	EstimatedTotalFare       *float64
	EstimatedDurationMinutes *int
	CreatedAt                time.Time
}

// RouteFromSuggestion converts an approved suggestion into a catalogue Route.
func RouteFromSuggestion(s RouteSuggestion) Route {
	return Route{
		ID:                       s.ID,
		Source:                   SourceCommunity,
		Origin:                   s.Origin,
		Destination:              s.Destination,
		VehicleTypes:             s.VehicleTypes,
		Itinerary:                s.Itinerary,
		EstimatedTotalFare:       s.EstimatedTotalFare,
		EstimatedDurationMinutes: s.EstimatedDurationMinutes,
		CreatedAt:                s.CreatedAt,
	}
}
