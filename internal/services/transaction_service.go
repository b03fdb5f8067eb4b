package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// EventPublisher sends recalculation requests to the worker. A nil
// publisher disables events; writes still succeed.
type EventPublisher interface {
	PublishRecalc(ctx context.Context, msg *amqp.RecalcMessage) error
}

// TransactionService records and removes transactions, nudging the worker
// to refresh the affected daily balances after each write.
type TransactionService struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewTransactionService(repo *storage.Repository, publisher EventPublisher) *TransactionService {
	return &TransactionService{repo: repo, publisher: publisher}
}

// Create validates and stores a transaction, assigning its id and
// creation time.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx.TransactionID = uuid.NewString()
	tx.CreatedAt = time.Now().UTC()

	if err := s.repo.SaveTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", tx.TransactionID,
		"type", tx.Type,
		"amount", tx.Amount,
		"date", tx.Date.ISO())

	s.publishRecalc(ctx, tx)
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// Delete removes a transaction and requests a recalculation from its date
// onward.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	tx, err := s.repo.Transaction(ctx, userID, transactionID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if tx == nil {
		return fmt.Errorf("transaction %s: %w", transactionID, core.ErrNotFound)
	}

	if err := s.repo.DeleteTransaction(ctx, userID, transactionID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", transactionID)

	s.publishRecalc(ctx, *tx)
	return nil
}

// publishRecalc is best effort: a broker outage must not fail the write
// that already landed in the store.
func (s *TransactionService) publishRecalc(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}

	end := core.Today()
	if end.Before(tx.Date) {
		end = tx.Date
	}
	msg := amqp.NewRecalcMessage(tx.UserID, syntheticAccountID(tx), tx.Date.ISO(), end.ISO())

	if err := s.publisher.PublishRecalc(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recalc message",
			"transaction_id", tx.TransactionID, "error", err)
	}
}

// syntheticAccountID maps a transaction to the derived account id used in
// daily-balance keys.
func syntheticAccountID(tx core.Transaction) string {
	switch tx.AccountType {
	case core.AccountBank:
		return core.BankAccountPrefix + tx.AccountID
	case core.AccountCredit:
		return core.CreditAccountPrefix + tx.AccountID
	default:
		return core.CashAccountID
	}
}
