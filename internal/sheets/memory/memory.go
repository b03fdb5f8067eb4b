// Package memory is an in-process SnapshotExporter used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"kakeibo/internal/core"
)

type Exporter struct {
	mu   sync.Mutex
	rows []core.DailyBalance
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportSnapshots(_ context.Context, snapshots []core.DailyBalance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, snapshots...)
	return nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []core.DailyBalance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.DailyBalance(nil), e.rows...)
}
