// Package http exposes the ledger as a JSON API.
package http

import (
	"net/http"

	"kakeibo/internal/middleware/owner"
	"kakeibo/internal/middleware/trace"
	"kakeibo/internal/services"
)

// Services bundles the handler dependencies.
type Services struct {
	Recalc       *services.RecalcService
	Transactions *services.TransactionService
	Accounts     *services.AccountService
	Cards        *services.CardService
	Users        *services.UserService
	Categories   *services.CategoryService
}

type Server struct {
	http.Server
	svc Services
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr, defaultUserID string, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{Addr: addr},
		svc:    svc,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/daily-balances", s.handleDailyBalances)
	mux.HandleFunc("/daily-balances/{accountId}", s.handleAccountDailyBalances)
	mux.HandleFunc("/balance", s.handleBalanceSummary)
	mux.HandleFunc("/user", s.handleUser)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/transactions/{transactionId}", s.handleTransactionByID)
	mux.HandleFunc("/bank-accounts", s.handleBankAccounts)
	mux.HandleFunc("/bank-accounts/{accountId}", s.handleBankAccountByID)
	mux.HandleFunc("/bank-accounts/{accountId}/transfer", s.handleTransfer)
	mux.HandleFunc("/credit-cards", s.handleCreditCards)
	mux.HandleFunc("/credit-cards/{cardId}", s.handleCreditCardByID)
	mux.HandleFunc("/categories", s.handleCategories)

	tracer := trace.NewMiddleware(clientIP)
	owners := owner.NewMiddleware(defaultUserID)
	s.Handler = tracer.Middleware(owners.Middleware(mux))

	return s
}

// clientIP extracts the caller's address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
