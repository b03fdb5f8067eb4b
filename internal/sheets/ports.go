package sheets

import (
	"context"

	"kakeibo/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotExporter pushes freshly recalculated daily-balance
	// snapshots to an external sink.
	SnapshotExporter interface {
		ExportSnapshots(ctx context.Context, snapshots []core.DailyBalance) error
	}
)
