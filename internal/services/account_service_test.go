package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
)

func TestAccountCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewAccountService(repo, nil)

	created, err := svc.Create(ctx, "u1", "First Bank", decimal.NewFromInt(5000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.AccountID == "" {
		t.Error("account id not assigned")
	}

	if _, err := svc.Create(ctx, "u1", "  ", decimal.Zero); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank bank name err = %v, want ErrEmptyName", err)
	}

	accounts, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 1 || accounts[0].BankName != "First Bank" {
		t.Fatalf("accounts = %+v", accounts)
	}
}

func TestAccountUpdateMissing(t *testing.T) {
	svc := NewAccountService(newTestRepo(), nil)

	_, err := svc.Update(context.Background(), "u1", "nope", "Bank", decimal.Zero)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAccountDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewAccountService(repo, nil)

	created, err := svc.Create(ctx, "u1", "First Bank", decimal.Zero)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.AccountID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.AccountID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestTransferDeposit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	pub := &capturingPublisher{}
	svc := NewAccountService(repo, pub)

	created, err := svc.Create(ctx, "u1", "First Bank", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	acct, tx, err := svc.Transfer(ctx, "u1", created.AccountID, TransferDeposit,
		decimal.NewFromInt(300), "payday", mustDate(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !acct.Balance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("balance = %s, want 1300", acct.Balance)
	}
	if tx.Type != core.Income || tx.Category != "Deposit" || tx.Subcategory != "First Bank" {
		t.Errorf("mirror transaction = %+v", tx)
	}
	if tx.AccountID != created.AccountID || tx.AccountType != core.AccountBank {
		t.Errorf("mirror transaction account = %s/%s", tx.AccountType, tx.AccountID)
	}
	if len(pub.messages) != 1 || pub.messages[0].AccountID != core.BankAccountPrefix+created.AccountID {
		t.Errorf("publish = %+v", pub.messages)
	}
}

func TestTransferWithdrawOverdraft(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewAccountService(repo, nil)

	created, err := svc.Create(ctx, "u1", "First Bank", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = svc.Transfer(ctx, "u1", created.AccountID, TransferWithdraw,
		decimal.NewFromInt(150), "", mustDate(t, "2024-03-01"))
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// Nothing may have been written: balance unchanged, no mirror transaction.
	stored, err := repo.BankAccount(ctx, "u1", created.AccountID)
	if err != nil || stored == nil {
		t.Fatalf("BankAccount: %v, %v", stored, err)
	}
	if !stored.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want untouched 100", stored.Balance)
	}
	txs, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions after rejected withdrawal, want 0", len(txs))
	}
}

func TestTransferWithdrawToZero(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewAccountService(repo, nil)

	created, err := svc.Create(ctx, "u1", "First Bank", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	acct, tx, err := svc.Transfer(ctx, "u1", created.AccountID, TransferWithdraw,
		decimal.NewFromInt(100), "", mustDate(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("withdrawal to exactly zero must pass: %v", err)
	}
	if !acct.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", acct.Balance)
	}
	if tx.Type != core.Expense || tx.Category != "Withdrawal" {
		t.Errorf("mirror transaction = %+v", tx)
	}
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newTestRepo(), nil)

	if _, _, err := svc.Transfer(ctx, "u1", "b1", "sideways", decimal.NewFromInt(1), "", core.Date{}); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("unknown type err = %v, want ErrInvalidType", err)
	}
	if _, _, err := svc.Transfer(ctx, "u1", "b1", TransferDeposit, decimal.Zero, "", core.Date{}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v, want ErrInvalidAmount", err)
	}
	if _, _, err := svc.Transfer(ctx, "u1", "nope", TransferDeposit, decimal.NewFromInt(1), "", core.Date{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing account err = %v, want ErrNotFound", err)
	}
}
