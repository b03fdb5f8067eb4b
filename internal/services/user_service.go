package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// UserService exposes the owner's opening balance and the aggregate
// balance summary derived from it.
type UserService struct {
	repo *storage.Repository
}

func NewUserService(repo *storage.Repository) *UserService {
	return &UserService{repo: repo}
}

// Profile returns the stored profile, or a zero-balance one when the
// owner has never set an opening balance.
func (s *UserService) Profile(ctx context.Context, userID string) (core.UserProfile, error) {
	p, err := s.repo.UserProfile(ctx, userID)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("load user profile: %w", err)
	}
	if p == nil {
		return core.UserProfile{UserID: userID, InitialBalance: decimal.Zero}, nil
	}
	return *p, nil
}

// SetInitialBalance overwrites the owner's opening balance.
func (s *UserService) SetInitialBalance(ctx context.Context, userID string, balance decimal.Decimal) (core.UserProfile, error) {
	p := core.UserProfile{
		UserID:         userID,
		InitialBalance: balance,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.SaveUserProfile(ctx, p); err != nil {
		return core.UserProfile{}, fmt.Errorf("save user profile: %w", err)
	}
	slog.InfoContext(ctx, "Initial balance updated",
		"user_id", userID, "initial_balance", balance)
	return p, nil
}

// BalanceSummary aggregates all of the owner's transactions on top of
// the opening balance.
type BalanceSummary struct {
	InitialBalance   decimal.Decimal `json:"initialBalance"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
}

// Summary folds every transaction into income and expense totals.
// Account types are not distinguished here: the summary is the naive
// whole-ledger view, not a per-account balance.
func (s *UserService) Summary(ctx context.Context, userID string) (BalanceSummary, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return BalanceSummary{}, err
	}

	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("list transactions: %w", err)
	}

	summary := BalanceSummary{
		InitialBalance:   profile.InitialBalance,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TransactionCount: len(txs),
	}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case core.Expense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		}
	}
	summary.Balance = summary.InitialBalance.Add(summary.TotalIncome).Sub(summary.TotalExpense)
	return summary, nil
}
