package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/owner"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.List(r.Context(), owner.UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Transactions []core.Transaction `json:"transactions"`
	}{Transactions: txs})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type        string          `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Subcategory string          `json:"subcategory"`
		Memo        string          `json:"memo"`
		AccountType string          `json:"accountType"`
		AccountID   string          `json:"accountId"`
		Date        string          `json:"date"`
	}
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, "malformed JSON body")
		return
	}
	date, err := core.ParseDate(body.Date)
	if err != nil {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}

	accountType := core.AccountType(body.AccountType)
	if body.AccountType == "" {
		accountType = core.AccountCash
	}

	created, err := s.svc.Transactions.Create(r.Context(), core.Transaction{
		UserID:      owner.UserID(r.Context()),
		Type:        core.TransactionType(body.Type),
		Amount:      body.Amount,
		Category:    body.Category,
		Subcategory: body.Subcategory,
		Memo:        body.Memo,
		AccountType: accountType,
		AccountID:   body.AccountID,
		Date:        date,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	transactionID := r.PathValue("transactionId")
	if err := s.svc.Transactions.Delete(r.Context(), owner.UserID(r.Context()), transactionID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "transaction deleted"})
}
