package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/services"
	"kakeibo/internal/sheets/memory"
	"kakeibo/internal/storage"
)

func TestHandleRecalcMessage(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(storage.NewMemoryStore())
	exporter := memory.New()
	w := NewRecalcWorker(services.NewRecalcService(repo, 2), exporter)

	if err := repo.SaveUserProfile(ctx, core.UserProfile{
		UserID: "u1", InitialBalance: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("SaveUserProfile: %v", err)
	}
	date, _ := core.ParseDate("2024-03-01")
	if err := repo.SaveTransaction(ctx, core.Transaction{
		UserID:        "u1",
		TransactionID: "t1",
		Type:          core.Income,
		Amount:        decimal.NewFromInt(500),
		Category:      "Salary",
		AccountType:   core.AccountCash,
		Date:          date,
	}); err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}

	msg := amqp.NewRecalcMessage("u1", "", "2024-03-01", "2024-03-02")
	if err := w.HandleRecalcMessage(ctx, msg); err != nil {
		t.Fatalf("HandleRecalcMessage: %v", err)
	}

	snap, err := repo.DailyBalance(ctx, "u1", core.CashAccountID, date)
	if err != nil || snap == nil {
		t.Fatalf("snapshot missing: %v, %v", snap, err)
	}
	if !snap.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("balance = %s, want 1500", snap.Balance)
	}

	rows := exporter.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d exported rows, want 1", len(rows))
	}
	if rows[0].AccountID != core.CashAccountID || rows[0].Date.ISO() != "2024-03-01" {
		t.Errorf("exported row = %+v", rows[0])
	}
}

func TestHandleRecalcMessageDropsBadDates(t *testing.T) {
	repo := storage.NewRepository(storage.NewMemoryStore())
	w := NewRecalcWorker(services.NewRecalcService(repo, 1), nil)

	tests := []struct {
		name string
		msg  *amqp.RecalcMessage
	}{
		{"bad start", amqp.NewRecalcMessage("u1", "", "yesterday", "2024-03-02")},
		{"bad end", amqp.NewRecalcMessage("u1", "", "2024-03-01", "tomorrow")},
		{"reversed", amqp.NewRecalcMessage("u1", "", "2024-03-05", "2024-03-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Poison messages must not be requeued.
			if err := w.HandleRecalcMessage(context.Background(), tt.msg); err != nil {
				t.Errorf("err = %v, want nil", err)
			}
		})
	}
}

func TestHandleRecalcMessageWithoutExporter(t *testing.T) {
	repo := storage.NewRepository(storage.NewMemoryStore())
	w := NewRecalcWorker(services.NewRecalcService(repo, 1), nil)

	msg := amqp.NewRecalcMessage("u1", "", "2024-03-01", "2024-03-01")
	if err := w.HandleRecalcMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecalcMessage: %v", err)
	}
}
