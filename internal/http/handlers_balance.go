package http

import (
	"net/http"
	"strings"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/owner"
	"kakeibo/internal/services"
)

// handleDailyBalances serves the all-accounts snapshot view for one date
// and the recalculation trigger.
func (s *Server) handleDailyBalances(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDailyBalances(w, r)
	case http.MethodPost:
		s.recalculate(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listDailyBalances(w http.ResponseWriter, r *http.Request) {
	date := core.Today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	balances, err := s.svc.Recalc.DailyBalancesByDate(r.Context(), owner.UserID(r.Context()), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Date     string              `json:"date"`
		Balances []core.DailyBalance `json:"balances"`
	}{Date: date.ISO(), Balances: balances})
}

func (s *Server) recalculate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		AccountID string `json:"accountId"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "malformed JSON body")
		return
	}
	start, err := core.ParseDate(body.StartDate)
	if err != nil {
		badRequest(w, "startDate must be YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(body.EndDate)
	if err != nil {
		badRequest(w, "endDate must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		badRequest(w, "endDate precedes startDate")
		return
	}

	report, err := s.svc.Recalc.Recalculate(r.Context(), services.RecalcRequest{
		UserID:    owner.UserID(r.Context()),
		StartDate: start,
		EndDate:   end,
		AccountID: body.AccountID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleAccountDailyBalances serves one account's snapshot history.
func (s *Server) handleAccountDailyBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	accountID := r.PathValue("accountId")
	var start, end core.Date
	if v := strings.TrimSpace(r.URL.Query().Get("startDate")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			badRequest(w, "startDate must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("endDate")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			badRequest(w, "endDate must be YYYY-MM-DD")
			return
		}
		end = parsed
	}

	balances, err := s.svc.Recalc.AccountDailyBalances(r.Context(), owner.UserID(r.Context()), accountID, start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		AccountID string              `json:"accountId"`
		Balances  []core.DailyBalance `json:"balances"`
	}{AccountID: accountID, Balances: balances})
}

// handleBalanceSummary serves the whole-ledger balance view.
func (s *Server) handleBalanceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	summary, err := s.svc.Users.Summary(r.Context(), owner.UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
