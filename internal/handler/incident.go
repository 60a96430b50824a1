package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/identity"
	"github.com/pkordes/dropalong/backend/internal/service"
)

type submitIncidentRequest struct {
	Type         string `json:"type"`
	LocationText string `json:"location_text"`
	Description  string `json:"description"`
}

type submitIncidentResponse struct {
	ID uuid.UUID `json:"id"`
}

type incidentResponse struct {
	ID           uuid.UUID           `json:"id"`
	Type         domain.IncidentType `json:"type"`
	LocationText string              `json:"location_text"`
	Description  string              `json:"description"`
	IsGuest      bool                `json:"is_guest"`
	CreatedAt    time.Time           `json:"created_at"`
}

type incidentListResponse struct {
	Data       []incidentResponse `json:"data"`
	Pagination paginationMeta     `json:"pagination"`
}

// SubmitIncident handles POST /incidents.
func (s *Server) SubmitIncident(w http.ResponseWriter, r *http.Request) {
	var body submitIncidentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.incidents.Submit(r.Context(), identity.FromContext(r.Context()), service.IncidentInput{
		Type:         body.Type,
		LocationText: body.LocationText,
		Description:  body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitIncidentResponse{ID: created.ID})
}

// ListIncidents handles GET /incidents, newest first.
func (s *Server) ListIncidents(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var since *time.Time
	if err := queryParam(r, "since", &since); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := s.incidents.Feed(r.Context(), domain.IncidentFilter{Since: since}, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]incidentResponse, len(page.Items))
	for i, rep := range page.Items {
		data[i] = incidentResponse{
			ID:           rep.ID,
			Type:         rep.Type,
			LocationText: rep.LocationText,
			Description:  rep.Description,
			IsGuest:      rep.ReporterID == nil,
			CreatedAt:    rep.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, incidentListResponse{Data: data, Pagination: metaFor(page.Params, page.Total)})
}
