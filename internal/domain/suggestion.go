// Package domain contains the core data types for the route contribution
// pipeline. It has no dependencies on other internal packages and is imported
// by every one of them (itinerary, repo, service, handler).
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the moderation state of a RouteSuggestion.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates s and returns the matching Status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	}
	return "", false
}

// PositionTag marks where a Leg sits within an itinerary.
type PositionTag string

const (
	TagStart  PositionTag = "start"
	TagStop   PositionTag = "stop"
	TagSwitch PositionTag = "switch" // vehicle change happens here
	TagEnd    PositionTag = "end"
)

// DefaultVehicleType is used when no leg names a vehicle.
const DefaultVehicleType = "Various"

// Leg is one ordered element of an itinerary.
// Fare is the cost of this leg only; nil means unknown, which is not the same
// as a free leg (0).
type Leg struct {
	PositionTag PositionTag `json:"type"`
	Location    string      `json:"location"`
	Instruction string      `json:"instruction,omitempty"`
	Vehicle     string      `json:"vehicle,omitempty"`
	Fare        *float64    `json:"fare"`
}

// RouteSuggestion is a community-submitted route awaiting or past moderation.
// ContributorID is nil for guest submissions.
type RouteSuggestion struct {
	ID                       uuid.UUID
	ContributorID            *string
	Origin                   string
	Destination              string
	VehicleTypes             []string
	Itinerary                []Leg
	EstimatedTotalFare       *float64
	EstimatedDurationMinutes *int
	Status                   Status
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// IsGuest reports whether the suggestion was submitted anonymously.
func (s RouteSuggestion) IsGuest() bool {
	return s.ContributorID == nil
}

// VehicleSummary returns the comma-joined display form of VehicleTypes.
func (s RouteSuggestion) VehicleSummary() string {
	return JoinVehicleTypes(s.VehicleTypes)
}

// JoinVehicleTypes renders a vehicle type set for display ("Bus, Keke").
func JoinVehicleTypes(types []string) string {
	if len(types) == 0 {
		return DefaultVehicleType
	}
	return strings.Join(types, ", ")
}

// SuggestionPatch carries an administrator's bulk edit.
// Nil fields are left untouched; this is a partial update, never a replace
// with zero values. The Clear flags reset an estimate to unknown and take
// precedence over the matching value.
type SuggestionPatch struct {
	Origin                        *string
	Destination                   *string
	Itinerary                     *[]Leg
	VehicleTypes                  *[]string
	EstimatedTotalFare            *float64
	EstimatedDurationMinutes      *int
	ClearEstimatedTotalFare       bool
	ClearEstimatedDurationMinutes bool
	Status                        *Status
}

// IsEmpty reports whether the patch supplies no fields at all.
func (p SuggestionPatch) IsEmpty() bool {
	return p.Origin == nil && p.Destination == nil && p.Itinerary == nil &&
		p.VehicleTypes == nil && p.EstimatedTotalFare == nil &&
		p.EstimatedDurationMinutes == nil && p.Status == nil &&
		!p.ClearEstimatedTotalFare && !p.ClearEstimatedDurationMinutes
}

// SuggestionFilter narrows a moderation queue listing.
// A nil Status lists suggestions in every state. Text, when non-empty, keeps
// suggestions whose origin or destination contains it, ignoring case.
type SuggestionFilter struct {
	Status *Status
	Text   string
}
