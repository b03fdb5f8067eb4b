package http

import (
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/owner"
	"kakeibo/internal/services"
)

func (s *Server) handleCreditCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cards, err := s.svc.Cards.List(r.Context(), owner.UserID(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Cards []core.CreditCard `json:"cards"`
		}{Cards: cards})
	case http.MethodPost:
		var body struct {
			CardName            string `json:"cardName"`
			WithdrawalAccountID string `json:"withdrawalAccountId"`
			ClosingDay          int    `json:"closingDay"`
			WithdrawalMonth     string `json:"withdrawalMonth"`
			WithdrawalDay       int    `json:"withdrawalDay"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, "malformed JSON body")
			return
		}
		created, err := s.svc.Cards.Create(r.Context(), core.CreditCard{
			UserID:              owner.UserID(r.Context()),
			CardName:            body.CardName,
			WithdrawalAccountID: body.WithdrawalAccountID,
			ClosingDay:          body.ClosingDay,
			WithdrawalMonth:     body.WithdrawalMonth,
			WithdrawalDay:       body.WithdrawalDay,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCreditCardByID(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardId")
	switch r.Method {
	case http.MethodPut:
		var body struct {
			CardName            *string `json:"cardName"`
			WithdrawalAccountID *string `json:"withdrawalAccountId"`
			ClosingDay          *int    `json:"closingDay"`
			WithdrawalMonth     *string `json:"withdrawalMonth"`
			WithdrawalDay       *int    `json:"withdrawalDay"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, "malformed JSON body")
			return
		}
		updated, err := s.svc.Cards.Update(r.Context(), owner.UserID(r.Context()), cardID, services.CardUpdate{
			CardName:            body.CardName,
			WithdrawalAccountID: body.WithdrawalAccountID,
			ClosingDay:          body.ClosingDay,
			WithdrawalMonth:     body.WithdrawalMonth,
			WithdrawalDay:       body.WithdrawalDay,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.svc.Cards.Delete(r.Context(), owner.UserID(r.Context()), cardID); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "credit card deleted"})
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}
