package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

func newTestRepo() *storage.Repository {
	return storage.NewRepository(storage.NewMemoryStore())
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func seedTransaction(t *testing.T, repo *storage.Repository, userID, id string, txType core.TransactionType, accType core.AccountType, accID, date string, amount int64) {
	t.Helper()
	tx := core.Transaction{
		UserID:        userID,
		TransactionID: id,
		Type:          txType,
		Amount:        decimal.NewFromInt(amount),
		Category:      "Food",
		AccountType:   accType,
		AccountID:     accID,
		Date:          mustDate(t, date),
	}
	if err := repo.SaveTransaction(context.Background(), tx); err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}
}

func TestListAccountsSynthesizesCashBankCredit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewRecalcService(repo, 2)

	if err := repo.SaveUserProfile(ctx, core.UserProfile{
		UserID:         "u1",
		InitialBalance: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("SaveUserProfile: %v", err)
	}
	if err := repo.SaveBankAccount(ctx, core.BankAccount{
		UserID: "u1", AccountID: "b1", BankName: "First Bank",
	}); err != nil {
		t.Fatalf("SaveBankAccount: %v", err)
	}
	if err := repo.SaveCreditCard(ctx, core.CreditCard{
		UserID: "u1", CardID: "c1", CardName: "Blue Card",
		WithdrawalAccountID: "b1", ClosingDay: 15, WithdrawalMonth: "next", WithdrawalDay: 10,
	}); err != nil {
		t.Fatalf("SaveCreditCard: %v", err)
	}

	accounts, err := svc.ListAccounts(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("got %d accounts, want 3", len(accounts))
	}
	if accounts[0].AccountID != core.CashAccountID {
		t.Errorf("first account = %s, want cash", accounts[0].AccountID)
	}
	if !accounts[0].InitialBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("cash initial balance = %s, want 1000", accounts[0].InitialBalance)
	}
	if accounts[1].AccountID != "bank-b1" || accounts[1].OriginalID != "b1" {
		t.Errorf("bank account = %+v", accounts[1])
	}
	if accounts[2].AccountID != "credit-c1" {
		t.Errorf("credit account = %+v", accounts[2])
	}
}

func TestListAccountsWithoutProfile(t *testing.T) {
	svc := NewRecalcService(newTestRepo(), 1)

	accounts, err := svc.ListAccounts(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want cash only", len(accounts))
	}
	if !accounts[0].InitialBalance.IsZero() {
		t.Errorf("cash initial balance = %s, want 0", accounts[0].InitialBalance)
	}
}

func TestRecalculateCashAccount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewRecalcService(repo, 2)

	if err := repo.SaveUserProfile(ctx, core.UserProfile{
		UserID: "u1", InitialBalance: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("SaveUserProfile: %v", err)
	}
	seedTransaction(t, repo, "u1", "t1", core.Income, core.AccountCash, "", "2024-03-01", 500)
	seedTransaction(t, repo, "u1", "t2", core.Expense, core.AccountCash, "", "2024-03-03", 200)

	report, err := svc.Recalculate(ctx, RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-05"),
		AccountID: core.CashAccountID,
	})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if report.ProcessedAccounts != 1 {
		t.Fatalf("processed accounts = %d, want 1", report.ProcessedAccounts)
	}
	res := report.Results[0]
	if res.ProcessedDays != 2 {
		t.Errorf("processed days = %d, want 2", res.ProcessedDays)
	}
	if !res.FinalBalance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("final balance = %s, want 1300", res.FinalBalance)
	}

	first, err := repo.DailyBalance(ctx, "u1", core.CashAccountID, mustDate(t, "2024-03-01"))
	if err != nil || first == nil {
		t.Fatalf("DailyBalance 2024-03-01: %v, %v", first, err)
	}
	if !first.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("2024-03-01 balance = %s, want 1500", first.Balance)
	}
	if first.TransactionCount != 1 {
		t.Errorf("2024-03-01 count = %d, want 1", first.TransactionCount)
	}
	if missing, _ := repo.DailyBalance(ctx, "u1", core.CashAccountID, mustDate(t, "2024-03-02")); missing != nil {
		t.Errorf("snapshot written for a date with no transactions: %+v", missing)
	}
}

func TestRecalculateSeedsFromPriorSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewRecalcService(repo, 1)

	if err := repo.SaveDailyBalance(ctx, core.DailyBalance{
		UserID:    "u1",
		AccountID: core.CashAccountID,
		Date:      mustDate(t, "2024-02-29"),
		Balance:   decimal.NewFromInt(750),
	}); err != nil {
		t.Fatalf("SaveDailyBalance: %v", err)
	}
	seedTransaction(t, repo, "u1", "t1", core.Income, core.AccountCash, "", "2024-03-01", 100)

	report, err := svc.Recalculate(ctx, RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-01"),
		AccountID: core.CashAccountID,
	})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !report.Results[0].FinalBalance.Equal(decimal.NewFromInt(850)) {
		t.Errorf("final balance = %s, want 850 (prior snapshot + 100)", report.Results[0].FinalBalance)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewRecalcService(repo, 1)

	seedTransaction(t, repo, "u1", "t1", core.Income, core.AccountCash, "", "2024-03-01", 100)
	req := RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-01"),
		AccountID: core.CashAccountID,
	}

	for i := 0; i < 3; i++ {
		report, err := svc.Recalculate(ctx, req)
		if err != nil {
			t.Fatalf("Recalculate run %d: %v", i, err)
		}
		if !report.Results[0].FinalBalance.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("run %d final balance = %s, want 100", i, report.Results[0].FinalBalance)
		}
	}

	snapshots, err := repo.AccountDailyBalances(ctx, "u1", core.CashAccountID, core.Date{}, core.Date{})
	if err != nil {
		t.Fatalf("AccountDailyBalances: %v", err)
	}
	if len(snapshots) != 1 {
		t.Errorf("got %d snapshots after reruns, want 1", len(snapshots))
	}
}

func TestRecalculateUnknownAccount(t *testing.T) {
	svc := NewRecalcService(newTestRepo(), 1)

	_, err := svc.Recalculate(context.Background(), RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-01"),
		AccountID: "bank-nope",
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// failingSnapshotStore breaks snapshot writes for a single account.
type failingSnapshotStore struct {
	storage.Store
	skPrefix string
}

func (s *failingSnapshotStore) Put(ctx context.Context, rec storage.Record) error {
	if strings.HasPrefix(rec.SK, s.skPrefix) {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, rec)
}

func TestRecalculateReportsPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	repo := storage.NewRepository(&failingSnapshotStore{
		Store:    mem,
		skPrefix: storage.KindDailyBalance + "#bank-b1#",
	})
	svc := NewRecalcService(repo, 2)

	if err := repo.SaveBankAccount(ctx, core.BankAccount{
		UserID: "u1", AccountID: "b1", BankName: "First Bank",
	}); err != nil {
		t.Fatalf("SaveBankAccount: %v", err)
	}
	seedTransaction(t, repo, "u1", "t1", core.Income, core.AccountCash, "", "2024-03-01", 100)
	seedTransaction(t, repo, "u1", "t2", core.Income, core.AccountBank, "b1", "2024-03-01", 100)

	report, err := svc.Recalculate(ctx, RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-01"),
	})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if report.ProcessedAccounts != 1 {
		t.Errorf("processed accounts = %d, want 1", report.ProcessedAccounts)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}

	var cashOK, bankFailed bool
	for _, res := range report.Results {
		switch res.AccountID {
		case core.CashAccountID:
			cashOK = res.Error == "" && res.FinalBalance.Equal(decimal.NewFromInt(100))
		case "bank-b1":
			bankFailed = res.Error != ""
		}
	}
	if !cashOK {
		t.Errorf("cash account should have succeeded: %+v", report.Results)
	}
	if !bankFailed {
		t.Errorf("bank account should carry an error: %+v", report.Results)
	}

	// The healthy account's snapshot must have landed despite the failure.
	snap, err := repo.DailyBalance(ctx, "u1", core.CashAccountID, mustDate(t, "2024-03-01"))
	if err != nil || snap == nil {
		t.Fatalf("cash snapshot missing: %v, %v", snap, err)
	}
}

func TestRecalculateCreditCardExpensesOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewRecalcService(repo, 1)

	if err := repo.SaveCreditCard(ctx, core.CreditCard{
		UserID: "u1", CardID: "c1", CardName: "Blue Card",
		WithdrawalAccountID: "b1", ClosingDay: 15, WithdrawalMonth: "next", WithdrawalDay: 10,
	}); err != nil {
		t.Fatalf("SaveCreditCard: %v", err)
	}
	seedTransaction(t, repo, "u1", "t1", core.Expense, core.AccountCredit, "c1", "2024-03-01", 300)
	seedTransaction(t, repo, "u1", "t2", core.Income, core.AccountCredit, "c1", "2024-03-01", 999)

	report, err := svc.Recalculate(ctx, RecalcRequest{
		UserID:    "u1",
		StartDate: mustDate(t, "2024-03-01"),
		EndDate:   mustDate(t, "2024-03-01"),
		AccountID: "credit-c1",
	})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	res := report.Results[0]
	if !res.FinalBalance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("credit balance = %s, want 300 (income ignored)", res.FinalBalance)
	}
	if res.ProcessedDays != 1 {
		t.Errorf("processed days = %d, want 1", res.ProcessedDays)
	}
}
