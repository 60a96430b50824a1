package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IncidentType classifies a road incident report.
type IncidentType string

const (
	IncidentPolice       IncidentType = "police"
	IncidentTraffic      IncidentType = "traffic"
	IncidentBlocked      IncidentType = "blocked"
	IncidentCheckpoint   IncidentType = "checkpoint"
	IncidentAccident     IncidentType = "accident"
	IncidentConstruction IncidentType = "construction"
	IncidentSlow         IncidentType = "slow"
)

// ParseIncidentType validates s and returns the matching IncidentType.
func ParseIncidentType(s string) (IncidentType, bool) {
	switch t := IncidentType(strings.ToLower(strings.TrimSpace(s))); t {
	case IncidentPolice, IncidentTraffic, IncidentBlocked, IncidentCheckpoint,
		IncidentAccident, IncidentConstruction, IncidentSlow:
		return t, true
	}
	return "", false
}

// IncidentReport is an append-only road incident. It has no moderation
// status and is visible as soon as it is created.
type IncidentReport struct {
	ID           uuid.UUID
	ReporterID   *string
	Type         IncidentType
	LocationText string
	Description  string
	CreatedAt    time.Time
}

// IncidentFilter narrows the incident feed.
// A nil Since returns the whole feed.
type IncidentFilter struct {
	Since *time.Time
}
