package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roman-kulish/casakit/internal/flaglog"
	"github.com/roman-kulish/casakit/internal/storage"
)

const maxBatchSize = 100

// WithMaxBatchSize sets the maximum number of records stored within a single
// database transaction.
func WithMaxBatchSize(size int) func(*Journal) {
	return func(j *Journal) {
		j.maxBatchSize = size
	}
}

// Journal records flagstat runs in the flag journal
type Journal struct {
	store  storage.Store
	logger *slog.Logger

	maxBatchSize int
}

func NewJournal(store storage.Store, logger *slog.Logger, options ...func(*Journal)) *Journal {
	j := Journal{
		store:        store,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
	for _, option := range options {
		option(&j)
	}
	if j.maxBatchSize <= 0 {
		j.maxBatchSize = maxBatchSize
	}
	return &j
}

// Save creates a run for the report section and stores its records in batches
func (j *Journal) Save(ctx context.Context, logPath string, report *flaglog.Report) error {
	run, err := j.store.CreateRun(ctx, logPath, report.Section)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	for batch := range slices.Chunk(report.Records, j.maxBatchSize) {
		if err = j.store.StoreRecords(ctx, run.ID, batch); err != nil {
			return fmt.Errorf("run %d: %w", run.ID, err)
		}
	}

	j.logger.Info("run saved",
		slog.Int64("id", run.ID),
		slog.String("uuid", run.UUID.String()),
		slog.Int("records", len(report.Records)))

	return nil
}
