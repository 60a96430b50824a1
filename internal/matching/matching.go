// Package matching implements the route search filter applied to the
// catalogue at query time.
//
// Matching is a binary filter, not a ranking: a route either matches or it
// does not, and results keep catalogue order. When a filtered search matches
// nothing, a bounded sample of the catalogue is returned instead and the
// result says so.
package matching

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// DefaultFallbackLimit bounds the fallback sample when no limit is configured.
const DefaultFallbackLimit = 20

// Query is a search request. Every field is optional.
type Query struct {
	Origin      string
	Destination string
	// Vehicle narrows matches to routes listing this vehicle type.
	Vehicle string
}

// IsEmpty reports whether the query has no search terms at all.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Origin) == "" &&
		strings.TrimSpace(q.Destination) == "" &&
		strings.TrimSpace(q.Vehicle) == ""
}

// Result is the outcome of a search.
// UsedFallback is true when the filter matched nothing and Routes holds the
// unfiltered sample instead.
type Result struct {
	Routes       []domain.Route
	UsedFallback bool
}

// Engine applies Query to a catalogue.
type Engine struct {
	fallbackLimit int
}

// NewEngine returns an Engine whose fallback sample holds at most
// fallbackLimit routes. A non-positive limit uses DefaultFallbackLimit.
func NewEngine(fallbackLimit int) *Engine {
	if fallbackLimit <= 0 {
		fallbackLimit = DefaultFallbackLimit
	}
	return &Engine{fallbackLimit: fallbackLimit}
}

// Match filters catalogue by q.
//
// Origin and destination are matched case-insensitively as substrings and in
// both directions: a route matches when its origin or destination contains
// either term, so users who swap the two fields still find it. An empty query
// returns the whole catalogue without fallback.
func (e *Engine) Match(catalogue []domain.Route, q Query) Result {
	if q.IsEmpty() {
		return Result{Routes: clone(catalogue)}
	}

	// A Caser is stateful; one per call keeps Match safe for concurrent use.
	fold := cases.Fold()
	terms := nonEmpty(fold.String(strings.TrimSpace(q.Origin)), fold.String(strings.TrimSpace(q.Destination)))
	vehicle := fold.String(strings.TrimSpace(q.Vehicle))

	matched := make([]domain.Route, 0)
	for _, r := range catalogue {
		if len(terms) > 0 && !matchesPlace(fold, r, terms) {
			continue
		}
		if vehicle != "" && !hasVehicle(fold, r, vehicle) {
			continue
		}
		matched = append(matched, r)
	}

	if len(matched) > 0 {
		return Result{Routes: matched}
	}
	return Result{Routes: e.sample(catalogue), UsedFallback: true}
}

// matchesPlace reports whether either of the route's endpoints contains any
// of the folded terms.
func matchesPlace(fold cases.Caser, r domain.Route, terms []string) bool {
	origin := fold.String(r.Origin)
	destination := fold.String(r.Destination)
	for _, term := range terms {
		if strings.Contains(origin, term) || strings.Contains(destination, term) {
			return true
		}
	}
	return false
}

func hasVehicle(fold cases.Caser, r domain.Route, vehicle string) bool {
	for _, v := range r.VehicleTypes {
		if fold.String(strings.TrimSpace(v)) == vehicle {
			return true
		}
	}
	return false
}

// sample returns the first fallbackLimit routes in catalogue order.
func (e *Engine) sample(catalogue []domain.Route) []domain.Route {
	n := min(len(catalogue), e.fallbackLimit)
	return clone(catalogue[:n])
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clone(routes []domain.Route) []domain.Route {
	out := make([]domain.Route, len(routes))
	copy(out, routes)
	return out
}
