package domain

import "time"

// ReputationAccount is a contributor's running point total.
// Points never decrease; the account is created on its first award.
type ReputationAccount struct {
	AccountID string
	Points    int64
	UpdatedAt time.Time
}

// Stats is the administrator dashboard summary.
type Stats struct {
	PendingSuggestions  int64
	ApprovedSuggestions int64
	RejectedSuggestions int64
	Incidents           int64
	Contributors        int64
}
