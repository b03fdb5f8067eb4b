package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"kakeibo/internal/middleware/owner"
)

// handleUser serves the owner's opening cash balance.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.svc.Users.Profile(r.Context(), owner.UserID(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	case http.MethodPost:
		var body struct {
			InitialBalance decimal.Decimal `json:"initialBalance"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, "malformed JSON body")
			return
		}
		profile, err := s.svc.Users.SetInitialBalance(r.Context(), owner.UserID(r.Context()), body.InitialBalance)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}
