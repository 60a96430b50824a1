package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

type accountResponse struct {
	AccountID string `json:"account_id"`
	Points    int64  `json:"points"`
}

type leaderboardResponse struct {
	Data []accountResponse `json:"data"`
}

// GetBalance handles GET /reputation/{accountId}.
// Accounts that were never awarded report zero points.
func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	acct, err := s.ledger.Balance(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(acct))
}

// GetLeaderboard handles GET /reputation/leaderboard?limit=.
func (s *Server) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := queryParam(r, "limit", &limit); err != nil {
		writeError(w, r, err)
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	top, err := s.ledger.Leaderboard(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data := make([]accountResponse, len(top))
	for i, acct := range top {
		data[i] = accountToResponse(acct)
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Data: data})
}

func accountToResponse(a domain.ReputationAccount) accountResponse {
	return accountResponse{AccountID: a.AccountID, Points: a.Points}
}
