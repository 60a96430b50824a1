package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/matching"
)

type routeResponse struct {
	ID                       uuid.UUID          `json:"id"`
	Source                   domain.RouteSource `json:"source"`
	Origin                   string             `json:"origin"`
	Destination              string             `json:"destination"`
	VehicleTypes             []string           `json:"vehicle_types"`
	Vehicles                 string             `json:"vehicles"`
	Itinerary                []domain.Leg       `json:"itinerary"`
	EstimatedTotalFare       *float64           `json:"estimated_total_fare"`
	EstimatedDurationMinutes *int               `json:"estimated_duration_minutes"`
}

type routeSearchResponse struct {
	Data         []routeResponse `json:"data"`
	UsedFallback bool            `json:"used_fallback"`
}

// SearchRoutes handles GET /routes?origin=&destination=&vehicle=.
func (s *Server) SearchRoutes(w http.ResponseWriter, r *http.Request) {
	var origin, destination, vehicle *string
	for name, dest := range map[string]**string{
		"origin":      &origin,
		"destination": &destination,
		"vehicle":     &vehicle,
	} {
		if err := queryParam(r, name, dest); err != nil {
			writeError(w, r, err)
			return
		}
	}

	result, err := s.search.Search(r.Context(), matching.Query{
		Origin:      deref(origin),
		Destination: deref(destination),
		Vehicle:     deref(vehicle),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]routeResponse, len(result.Routes))
	for i, rt := range result.Routes {
		data[i] = routeResponse{
			ID:                       rt.ID,
			Source:                   rt.Source,
			Origin:                   rt.Origin,
			Destination:              rt.Destination,
			VehicleTypes:             nonNilStrings(rt.VehicleTypes),
			Vehicles:                 domain.JoinVehicleTypes(rt.VehicleTypes),
			Itinerary:                nonNilLegs(rt.Itinerary),
			EstimatedTotalFare:       rt.EstimatedTotalFare,
			EstimatedDurationMinutes: rt.EstimatedDurationMinutes,
		}
	}
	writeJSON(w, http.StatusOK, routeSearchResponse{Data: data, UsedFallback: result.UsedFallback})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
