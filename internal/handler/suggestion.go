package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/identity"
	"github.com/pkordes/dropalong/backend/internal/itinerary"
	"github.com/pkordes/dropalong/backend/internal/service"
)

// stopRequest is one raw stop of a submitted itinerary.
type stopRequest struct {
	Location     string    `json:"location"`
	Instructions string    `json:"instructions"`
	Vehicle      string    `json:"vehicle"`
	Fare         looseText `json:"fare"`
	Type         string    `json:"type"`
}

type submitSuggestionRequest struct {
	Origin                   string          `json:"origin"`
	Destination              string          `json:"destination"`
	Stops                    json.RawMessage `json:"stops"`
	EstimatedTotalFare       looseText       `json:"estimated_total_fare"`
	EstimatedDurationMinutes looseText       `json:"estimated_duration_minutes"`
}

type submitSuggestionResponse struct {
	ID      uuid.UUID     `json:"id"`
	Status  domain.Status `json:"status"`
	IsGuest bool          `json:"is_guest"`
}

type editSuggestionRequest struct {
	Origin                   *string         `json:"origin"`
	Destination              *string         `json:"destination"`
	Stops                    json.RawMessage `json:"stops"`
	VehicleTypes             *[]string       `json:"vehicle_types"`
	EstimatedTotalFare       *looseText      `json:"estimated_total_fare"`
	EstimatedDurationMinutes *looseText      `json:"estimated_duration_minutes"`
	Status                   *string         `json:"status"`
}

type moderateRequest struct {
	Status string `json:"status"`
}

type moderateResponse struct {
	ID     uuid.UUID     `json:"id"`
	Status domain.Status `json:"status"`
}

type suggestionResponse struct {
	ID                       uuid.UUID     `json:"id"`
	ContributorID            *string       `json:"contributor_id"`
	IsGuest                  bool          `json:"is_guest"`
	Origin                   string        `json:"origin"`
	Destination              string        `json:"destination"`
	VehicleTypes             []string      `json:"vehicle_types"`
	Vehicles                 string        `json:"vehicles"`
	Itinerary                []domain.Leg  `json:"itinerary"`
	EstimatedTotalFare       *float64      `json:"estimated_total_fare"`
	EstimatedDurationMinutes *int          `json:"estimated_duration_minutes"`
	Status                   domain.Status `json:"status"`
	CreatedAt                time.Time     `json:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at"`
}

type suggestionListResponse struct {
	Data       []suggestionResponse `json:"data"`
	Pagination paginationMeta       `json:"pagination"`
}

// SubmitSuggestion handles POST /suggestions.
func (s *Server) SubmitSuggestion(w http.ResponseWriter, r *http.Request) {
	var body submitSuggestionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	stops, err := decodeStops(body.Stops)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.suggestions.Submit(r.Context(), identity.FromContext(r.Context()), service.SuggestionInput{
		Origin:                   body.Origin,
		Destination:              body.Destination,
		Stops:                    stops,
		EstimatedTotalFare:       string(body.EstimatedTotalFare),
		EstimatedDurationMinutes: string(body.EstimatedDurationMinutes),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitSuggestionResponse{
		ID:      created.ID,
		Status:  created.Status,
		IsGuest: created.IsGuest(),
	})
}

// ListSuggestions handles GET /admin/suggestions.
func (s *Server) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var status, text *string
	if err := queryParam(r, "status", &status); err != nil {
		writeError(w, r, err)
		return
	}
	if err := queryParam(r, "q", &text); err != nil {
		writeError(w, r, err)
		return
	}

	var filter domain.SuggestionFilter
	if status != nil && *status != "" {
		st, ok := domain.ParseStatus(*status)
		if !ok {
			writeError(w, r, domain.NewFieldError("status", "must be one of pending, approved, rejected"))
			return
		}
		filter.Status = &st
	}
	if text != nil {
		filter.Text = *text
	}

	page, err := s.suggestions.Queue(r.Context(), identity.FromContext(r.Context()), filter, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]suggestionResponse, len(page.Items))
	for i, item := range page.Items {
		data[i] = suggestionToResponse(item)
	}
	writeJSON(w, http.StatusOK, suggestionListResponse{Data: data, Pagination: metaFor(page.Params, page.Total)})
}

// GetSuggestion handles GET /admin/suggestions/{id}.
func (s *Server) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	got, err := s.suggestions.Get(r.Context(), identity.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionToResponse(got))
}

// EditSuggestion handles PATCH /admin/suggestions/{id}.
func (s *Server) EditSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body editSuggestionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	edit := service.SuggestionEdit{
		Origin:                   body.Origin,
		Destination:              body.Destination,
		VehicleTypes:             body.VehicleTypes,
		EstimatedTotalFare:       body.EstimatedTotalFare.ptr(),
		EstimatedDurationMinutes: body.EstimatedDurationMinutes.ptr(),
		Status:                   body.Status,
	}
	if len(body.Stops) > 0 && string(body.Stops) != "null" {
		stops, err := decodeStops(body.Stops)
		if err != nil {
			writeError(w, r, err)
			return
		}
		edit.Stops = &stops
	}

	updated, err := s.suggestions.Edit(r.Context(), identity.FromContext(r.Context()), id, edit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionToResponse(updated))
}

// ModerateSuggestion handles POST /admin/suggestions/{id}/moderation.
func (s *Server) ModerateSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body moderateRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	moderated, err := s.suggestions.Moderate(r.Context(), identity.FromContext(r.Context()), id, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moderateResponse{ID: moderated.ID, Status: moderated.Status})
}

// DeleteSuggestion handles DELETE /admin/suggestions/{id}.
func (s *Server) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.suggestions.Delete(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// decodeStops parses the stops field. Form clients send the array itself or
// a JSON-encoded string holding it; both are accepted.
func decodeStops(raw json.RawMessage) ([]itinerary.Stop, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, domain.NewFieldError("stops", "stops must be a JSON array")
		}
		if encoded == "" {
			return nil, nil
		}
		raw = json.RawMessage(encoded)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, domain.NewFieldError("stops", "stops must be a JSON array")
	}
	stops := make([]itinerary.Stop, len(elems))
	for i, elem := range elems {
		var st stopRequest
		if err := json.Unmarshal(elem, &st); err != nil {
			return nil, domain.NewFieldError(fmt.Sprintf("stops[%d]", i), "must be a stop object with text fields")
		}
		stops[i] = itinerary.Stop{
			Location:     st.Location,
			Instructions: st.Instructions,
			Vehicle:      st.Vehicle,
			Fare:         string(st.Fare),
			Type:         st.Type,
		}
	}
	return stops, nil
}

func suggestionToResponse(s domain.RouteSuggestion) suggestionResponse {
	return suggestionResponse{
		ID:                       s.ID,
		ContributorID:            s.ContributorID,
		IsGuest:                  s.IsGuest(),
		Origin:                   s.Origin,
		Destination:              s.Destination,
		VehicleTypes:             nonNilStrings(s.VehicleTypes),
		Vehicles:                 s.VehicleSummary(),
		Itinerary:                nonNilLegs(s.Itinerary),
		EstimatedTotalFare:       s.EstimatedTotalFare,
		EstimatedDurationMinutes: s.EstimatedDurationMinutes,
		Status:                   s.Status,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilLegs(v []domain.Leg) []domain.Leg {
	if v == nil {
		return []domain.Leg{}
	}
	return v
}
