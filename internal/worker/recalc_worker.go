// Package worker consumes recalculation messages and keeps daily-balance
// snapshots fresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/services"
	"kakeibo/internal/sheets"
)

// RecalcWorker turns a RecalcMessage into a recalculation run and, when
// an exporter is configured, pushes the refreshed snapshots out.
type RecalcWorker struct {
	recalc   *services.RecalcService
	exporter sheets.SnapshotExporter
}

// NewRecalcWorker creates the worker. exporter may be nil.
func NewRecalcWorker(recalc *services.RecalcService, exporter sheets.SnapshotExporter) *RecalcWorker {
	return &RecalcWorker{recalc: recalc, exporter: exporter}
}

// HandleRecalcMessage processes one message. A returned error requeues
// the delivery, so validation failures that can never succeed are logged
// and swallowed instead.
func (w *RecalcWorker) HandleRecalcMessage(ctx context.Context, msg *amqp.RecalcMessage) error {
	start, err := core.ParseDate(msg.StartDate)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping message with bad start date",
			"start_date", msg.StartDate, "error", err)
		return nil
	}
	end, err := core.ParseDate(msg.EndDate)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping message with bad end date",
			"end_date", msg.EndDate, "error", err)
		return nil
	}
	if end.Before(start) {
		slog.ErrorContext(ctx, "Dropping message with reversed range",
			"start_date", msg.StartDate, "end_date", msg.EndDate)
		return nil
	}

	report, err := w.recalc.Recalculate(ctx, services.RecalcRequest{
		UserID:    msg.UserID,
		StartDate: start,
		EndDate:   end,
		AccountID: msg.AccountID,
	})
	if err != nil {
		return fmt.Errorf("recalculate: %w", err)
	}

	slog.InfoContext(ctx, "Recalculation message processed",
		"user_id", msg.UserID,
		"account_id", msg.AccountID,
		"processed_accounts", report.ProcessedAccounts,
		"failed_accounts", len(report.Results)-report.ProcessedAccounts)

	if w.exporter != nil {
		if err := w.exportRange(ctx, msg.UserID, report, start, end); err != nil {
			// Export is best effort: the snapshots are already stored.
			slog.ErrorContext(ctx, "Snapshot export failed", "error", err)
		}
	}
	return nil
}

func (w *RecalcWorker) exportRange(ctx context.Context, userID string, report *services.RecalcReport, start, end core.Date) error {
	var snapshots []core.DailyBalance
	for _, res := range report.Results {
		if res.Error != "" {
			continue
		}
		balances, err := w.recalc.AccountDailyBalances(ctx, userID, res.AccountID, start, end)
		if err != nil {
			return fmt.Errorf("load snapshots for %s: %w", res.AccountID, err)
		}
		snapshots = append(snapshots, balances...)
	}
	if len(snapshots) == 0 {
		return nil
	}
	return w.exporter.ExportSnapshots(ctx, snapshots)
}
