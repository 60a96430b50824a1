package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// pathUUID binds the {name} path parameter as a UUID.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, domain.NewFieldError(name, "must be a UUID")
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer (e.g. **int) so absence stays nil.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return domain.NewFieldError(name, "invalid value")
	}
	return nil
}

// pagination binds the page and limit query parameters.
func pagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

// paginationMeta is the pagination block of every paged listing.
type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func metaFor(p domain.PaginationParams, total int64) paginationMeta {
	return paginationMeta{Page: p.Page, Limit: p.Limit, Total: total}
}

// looseText accepts a JSON string, number or null and keeps its text.
// Numeric fields of the forms arrive either way; the service layer parses
// them. Any other JSON value keeps its raw text and fails parsing there.
type looseText string

func (t *looseText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = looseText(s)
		return nil
	}
	*t = looseText(b)
	return nil
}

func (t *looseText) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
