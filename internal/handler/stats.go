package handler

import (
	"net/http"

	"github.com/pkordes/dropalong/backend/internal/identity"
)

type statsResponse struct {
	PendingSuggestions  int64 `json:"pending_suggestions"`
	ApprovedSuggestions int64 `json:"approved_suggestions"`
	RejectedSuggestions int64 `json:"rejected_suggestions"`
	Incidents           int64 `json:"incidents"`
	Contributors        int64 `json:"contributors"`
}

// GetStats handles GET /admin/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		PendingSuggestions:  st.PendingSuggestions,
		ApprovedSuggestions: st.ApprovedSuggestions,
		RejectedSuggestions: st.RejectedSuggestions,
		Incidents:           st.Incidents,
		Contributors:        st.Contributors,
	})
}
