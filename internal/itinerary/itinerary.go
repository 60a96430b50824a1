// Package itinerary turns free-form multi-stop input into the canonical leg
// sequence stored on a route suggestion.
//
// Normalization is pure and synchronous: it performs no I/O and either returns
// a complete result or a *domain.FieldError naming the first offending field.
package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// Stop is one raw stop as entered by a contributor.
// Fare is the unparsed text of the leg's cost; Type may be "switch" to mark a
// vehicle change at an interior stop.
type Stop struct {
	Location     string
	Instructions string
	Vehicle      string
	Fare         string
	Type         string
}

// Result is a normalized itinerary.
type Result struct {
	Legs         []domain.Leg
	VehicleTypes []string
}

// Normalize validates stops and assigns position tags by index: the first leg
// is start, the last is end, interior legs are stop unless marked switch.
//
// A single stop is tagged end. It cannot carry two tags and end wins by
// convention.
//
// An empty input yields no legs and the default vehicle type.
func Normalize(stops []Stop) (Result, error) {
	legs := make([]domain.Leg, 0, len(stops))
	for i, s := range stops {
		leg, err := normalizeStop(i, len(stops), s)
		if err != nil {
			return Result{}, err
		}
		legs = append(legs, leg)
	}
	return Result{Legs: legs, VehicleTypes: VehicleTypes(legs)}, nil
}

func normalizeStop(i, n int, s Stop) (domain.Leg, error) {
	location := strings.TrimSpace(s.Location)
	if location == "" {
		return domain.Leg{}, domain.NewFieldError(stopField(i, "location"), "location is required")
	}

	explicit, err := parseTag(i, s.Type)
	if err != nil {
		return domain.Leg{}, err
	}

	fare, err := legFare(i, s.Fare)
	if err != nil {
		return domain.Leg{}, err
	}

	return domain.Leg{
		PositionTag: positionTag(i, n, explicit),
		Location:    location,
		Instruction: strings.TrimSpace(s.Instructions),
		Vehicle:     s.Vehicle,
		Fare:        fare,
	}, nil
}

// positionTag applies the index rule. end is checked first so a one-stop
// itinerary is tagged end rather than start.
func positionTag(i, n int, explicit domain.PositionTag) domain.PositionTag {
	switch {
	case i == n-1:
		return domain.TagEnd
	case i == 0:
		return domain.TagStart
	case explicit == domain.TagSwitch:
		return domain.TagSwitch
	default:
		return domain.TagStop
	}
}

func parseTag(i int, raw string) (domain.PositionTag, error) {
	switch t := domain.PositionTag(strings.ToLower(strings.TrimSpace(raw))); t {
	case "", domain.TagStart, domain.TagStop, domain.TagEnd, domain.TagSwitch:
		return t, nil
	}
	return "", domain.NewFieldError(stopField(i, "type"), fmt.Sprintf("unknown stop type %q", raw))
}

// legFare parses a leg fare. Empty or non-numeric text is unknown (nil),
// never zero.
func legFare(i int, raw string) (*float64, error) {
	v, ok := parseNumber(raw)
	if !ok {
		return nil, nil
	}
	if v < 0 {
		return nil, domain.NewFieldError(stopField(i, "fare"), "fare must not be negative")
	}
	return &v, nil
}

// VehicleTypes returns the de-duplicated union of every leg's comma-separated
// vehicle values in first-seen order. Matching is case-sensitive. When no leg
// names a vehicle the result is the default vehicle type.
func VehicleTypes(legs []domain.Leg) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, leg := range legs {
		for _, part := range strings.Split(leg.Vehicle, ",") {
			v := strings.TrimSpace(part)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{domain.DefaultVehicleType}
	}
	return out
}

// CleanVehicleTypes trims and de-duplicates an explicitly supplied vehicle
// type list, falling back to the default when nothing remains.
func CleanVehicleTypes(types []string) []string {
	return VehicleTypes([]domain.Leg{{Vehicle: strings.Join(types, ",")}})
}

// ParseAmount parses an optional non-negative monetary amount such as an
// estimated total fare. Empty input is nil; anything unparseable or negative
// is a validation error on field.
func ParseAmount(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, ok := parseNumber(raw)
	if !ok {
		return nil, domain.NewFieldError(field, "must be a number")
	}
	if v < 0 {
		return nil, domain.NewFieldError(field, "must not be negative")
	}
	return &v, nil
}

// ParseMinutes parses an optional non-negative whole number of minutes.
func ParseMinutes(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewFieldError(field, "must be a whole number of minutes")
	}
	if v < 0 {
		return nil, domain.NewFieldError(field, "must not be negative")
	}
	return &v, nil
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func stopField(i int, name string) string {
	return fmt.Sprintf("stops[%d].%s", i, name)
}
