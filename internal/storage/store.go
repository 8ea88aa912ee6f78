package storage

import (
	"context"

	"github.com/roman-kulish/casakit/internal/flaglog"
)

// Store keeps a journal of the plotms selections flagstat has parsed, so
// that antennas which keep showing up across many selections stand out.
type Store interface {
	// CreateRun records a new pass over a log and returns it.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - logPath: Path of the CASA log the selection was read from
	//   - section: Location and point counts of the selection within the log
	//
	// Returns:
	//   - run: The stored run, with its ID and UUID assigned
	//   - error: If the run cannot be stored or context is cancelled
	CreateRun(ctx context.Context, logPath string, section flaglog.Section) (run *Run, err error)

	// StoreRecords saves the selection records of a run in a single
	// atomic transaction.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - runID: ID of the run the records belong to
	//   - records: Parsed selection records
	//
	// Returns:
	//   - error: If storage fails or context is cancelled
	StoreRecords(ctx context.Context, runID int64, records []flaglog.Record) error

	// Run retrieves a run by its ID.
	Run(ctx context.Context, id int64) (run *Run, err error)

	// Runs returns all runs ordered by creation time.
	Runs(ctx context.Context) (runs []*Run, err error)

	// Records returns the selection records of a run in the order they were
	// stored.
	Records(ctx context.Context, runID int64) (records []flaglog.Record, err error)

	// AntennaTotals counts how often every antenna appears across the
	// records of all runs, most frequent first. A non-positive limit returns
	// every antenna.
	AntennaTotals(ctx context.Context, limit int) (totals []flaglog.Count, err error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}
