package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

const (
	TransferDeposit  = "deposit"
	TransferWithdraw = "withdraw"
)

// AccountService manages bank accounts and the deposit/withdraw flow.
type AccountService struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewAccountService(repo *storage.Repository, publisher EventPublisher) *AccountService {
	return &AccountService{repo: repo, publisher: publisher}
}

func (s *AccountService) Create(ctx context.Context, userID, bankName string, initialBalance decimal.Decimal) (core.BankAccount, error) {
	acct := core.BankAccount{
		UserID:    userID,
		AccountID: uuid.NewString(),
		BankName:  bankName,
		Balance:   initialBalance,
		CreatedAt: time.Now().UTC(),
	}
	if err := acct.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	if err := s.repo.SaveBankAccount(ctx, acct); err != nil {
		return core.BankAccount{}, fmt.Errorf("save bank account: %w", err)
	}

	slog.InfoContext(ctx, "Bank account created",
		"account_id", acct.AccountID, "bank_name", acct.BankName)
	return acct, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]core.BankAccount, error) {
	return s.repo.ListBankAccounts(ctx, userID)
}

func (s *AccountService) Update(ctx context.Context, userID, accountID, bankName string, balance decimal.Decimal) (core.BankAccount, error) {
	acct, err := s.repo.BankAccount(ctx, userID, accountID)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("load bank account: %w", err)
	}
	if acct == nil {
		return core.BankAccount{}, fmt.Errorf("bank account %s: %w", accountID, core.ErrNotFound)
	}

	acct.BankName = bankName
	acct.Balance = balance
	acct.UpdatedAt = time.Now().UTC()
	if err := acct.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	if err := s.repo.SaveBankAccount(ctx, *acct); err != nil {
		return core.BankAccount{}, fmt.Errorf("save bank account: %w", err)
	}
	return *acct, nil
}

// Delete removes the account record. Its transactions and snapshots stay
// behind, orphaned but still queryable; there is no referential
// integrity across kinds.
func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	acct, err := s.repo.BankAccount(ctx, userID, accountID)
	if err != nil {
		return fmt.Errorf("load bank account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("bank account %s: %w", accountID, core.ErrNotFound)
	}
	return s.repo.DeleteBankAccount(ctx, userID, accountID)
}

// Transfer applies a deposit or withdrawal: it moves the stored account
// balance and records the mirror transaction. Withdrawals below zero are
// rejected before anything is written.
func (s *AccountService) Transfer(ctx context.Context, userID, accountID, transferType string, amount decimal.Decimal, memo string, date core.Date) (core.BankAccount, core.Transaction, error) {
	if transferType != TransferDeposit && transferType != TransferWithdraw {
		return core.BankAccount{}, core.Transaction{}, fmt.Errorf("unknown transfer type %q: %w", transferType, core.ErrInvalidType)
	}
	if amount.IsNegative() || amount.IsZero() {
		return core.BankAccount{}, core.Transaction{}, core.ErrInvalidAmount
	}

	acct, err := s.repo.BankAccount(ctx, userID, accountID)
	if err != nil {
		return core.BankAccount{}, core.Transaction{}, fmt.Errorf("load bank account: %w", err)
	}
	if acct == nil {
		return core.BankAccount{}, core.Transaction{}, fmt.Errorf("bank account %s: %w", accountID, core.ErrNotFound)
	}

	newBalance := acct.Balance.Add(amount)
	txType := core.Income
	category := "Deposit"
	if transferType == TransferWithdraw {
		newBalance = acct.Balance.Sub(amount)
		txType = core.Expense
		category = "Withdrawal"
	}
	if newBalance.IsNegative() {
		return core.BankAccount{}, core.Transaction{}, core.ErrInsufficientFunds
	}

	acct.Balance = newBalance
	acct.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveBankAccount(ctx, *acct); err != nil {
		return core.BankAccount{}, core.Transaction{}, fmt.Errorf("save bank account: %w", err)
	}

	if date.IsZero() {
		date = core.Today()
	}
	tx := core.Transaction{
		UserID:        userID,
		TransactionID: uuid.NewString(),
		Type:          txType,
		Amount:        amount,
		Category:      category,
		Subcategory:   acct.BankName,
		Memo:          memo,
		AccountType:   core.AccountBank,
		AccountID:     accountID,
		Date:          date,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.SaveTransaction(ctx, tx); err != nil {
		return core.BankAccount{}, core.Transaction{}, fmt.Errorf("save transfer transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transfer recorded",
		"account_id", accountID,
		"type", transferType,
		"amount", amount,
		"new_balance", newBalance)

	if s.publisher != nil {
		end := core.Today()
		if end.Before(tx.Date) {
			end = tx.Date
		}
		msg := amqp.NewRecalcMessage(userID, core.BankAccountPrefix+accountID, tx.Date.ISO(), end.ISO())
		if err := s.publisher.PublishRecalc(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish recalc message",
				"account_id", accountID, "error", err)
		}
	}

	return *acct, tx, nil
}
