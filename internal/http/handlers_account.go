package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/owner"
)

func (s *Server) handleBankAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBankAccounts(w, r)
	case http.MethodPost:
		s.createBankAccount(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context(), owner.UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Accounts []core.BankAccount `json:"accounts"`
	}{Accounts: accounts})
}

func (s *Server) createBankAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BankName string          `json:"bankName"`
		Balance  decimal.Decimal `json:"balance"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "malformed JSON body")
		return
	}
	created, err := s.svc.Accounts.Create(r.Context(), owner.UserID(r.Context()), body.BankName, body.Balance)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleBankAccountByID(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountId")
	switch r.Method {
	case http.MethodPut:
		var body struct {
			BankName string          `json:"bankName"`
			Balance  decimal.Decimal `json:"balance"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, "malformed JSON body")
			return
		}
		updated, err := s.svc.Accounts.Update(r.Context(), owner.UserID(r.Context()), accountID, body.BankName, body.Balance)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.svc.Accounts.Delete(r.Context(), owner.UserID(r.Context()), accountID); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "bank account deleted"})
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var body struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
		Memo   string          `json:"memo"`
		Date   string          `json:"date"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "malformed JSON body")
		return
	}
	var date core.Date
	if body.Date != "" {
		parsed, err := core.ParseDate(body.Date)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	account, tx, err := s.svc.Accounts.Transfer(r.Context(), owner.UserID(r.Context()),
		r.PathValue("accountId"), body.Type, body.Amount, body.Memo, date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Account     core.BankAccount `json:"account"`
		Transaction core.Transaction `json:"transaction"`
	}{Account: account, Transaction: tx})
}
