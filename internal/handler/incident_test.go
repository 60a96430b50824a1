package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/handler"
	"github.com/pkordes/dropalong/backend/internal/service"
)

func TestSubmitIncident_returns201WithID(t *testing.T) {
	id := uuid.New()
	var got service.IncidentInput
	svc := &mockIncidentServicer{
		submit: func(_ context.Context, a domain.Actor, in service.IncidentInput) (domain.IncidentReport, error) {
			assert.Equal(t, "acct-1", a.ID())
			got = in
			return domain.IncidentReport{ID: id}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Incidents: svc}, domain.AccountActor("acct-1"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/incidents", jsonBody(t, map[string]string{
		"type":          "checkpoint",
		"location_text": "Eleme Junction",
		"description":   "Stop and search",
	})))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, rec.Body.String())
	assert.Equal(t, service.IncidentInput{Type: "checkpoint", LocationText: "Eleme Junction", Description: "Stop and search"}, got)
}

func TestSubmitIncident_unknownTypeReturns422(t *testing.T) {
	svc := &mockIncidentServicer{
		submit: func(context.Context, domain.Actor, service.IncidentInput) (domain.IncidentReport, error) {
			return domain.IncidentReport{}, domain.NewFieldError("type", "unknown incident type")
		},
	}
	h := newHTTPHandler(handler.Services{Incidents: svc}, domain.Anonymous())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/incidents",
		jsonBody(t, map[string]string{"type": "flood", "description": "x"})))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "type", decodeError(t, rec.Body).Error.Field)
}

func TestListIncidents_bindsSinceAndReturnsPage(t *testing.T) {
	since := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var got domain.IncidentFilter
	svc := &mockIncidentServicer{
		feed: func(_ context.Context, f domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error) {
			got = f
			return domain.Page[domain.IncidentReport]{
				Items: []domain.IncidentReport{
					{ID: uuid.New(), Type: domain.IncidentTraffic, LocationText: "Garrison", ReporterID: ptr("acct-2")},
					{ID: uuid.New(), Type: domain.IncidentPolice, LocationText: "Rumuola"},
				},
				Total:  2,
				Params: p,
			}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Incidents: svc}, domain.Anonymous())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents?since="+since.Format(time.RFC3339), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Since)
	assert.True(t, since.Equal(*got.Since))

	var resp struct {
		Data []struct {
			Type    string `json:"type"`
			IsGuest bool   `json:"is_guest"`
		} `json:"data"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "traffic", resp.Data[0].Type)
	assert.False(t, resp.Data[0].IsGuest)
	assert.True(t, resp.Data[1].IsGuest)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 20, resp.Pagination.Limit)
}

func TestListIncidents_withoutSinceListsEverything(t *testing.T) {
	svc := &mockIncidentServicer{
		feed: func(_ context.Context, f domain.IncidentFilter, p domain.PaginationParams) (domain.Page[domain.IncidentReport], error) {
			assert.Nil(t, f.Since)
			return domain.Page[domain.IncidentReport]{Params: p}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Incidents: svc}, domain.Anonymous())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListIncidents_badSinceReturns422(t *testing.T) {
	h := newHTTPHandler(handler.Services{Incidents: &mockIncidentServicer{}}, domain.Anonymous())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents?since=yesterday", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "since", decodeError(t, rec.Body).Error.Field)
}
