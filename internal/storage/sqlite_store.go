package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/casakit/internal/flaglog"
)

var _ Store = (*SqliteStore)(nil)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened, and the schema created, on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, logPath string, section flaglog.Section) (run *Run, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	r := Run{
		UUID:      uuid.New(),
		CreatedAt: time.Now().UTC(),
		LogPath:   logPath,
		Found:     section.Found,
		Unflagged: section.Unflagged,
		Reported:  section.Reported,
		Truncated: section.Truncated,
		FullScan:  section.FullScan,
	}

	result, err := stmt.ExecContext(ctx, r.UUID, r.CreatedAt, r.LogPath, r.Found, r.Unflagged, r.Reported, r.Truncated, r.FullScan)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	if r.ID, err = result.LastInsertId(); err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
		return
	}
	return &r, nil
}

func (s *SqliteStore) StoreRecords(ctx context.Context, runID int64, records []flaglog.Record) (err error) {
	if len(records) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]any, 0, len(records)*11)

	var sb strings.Builder
	sb.WriteString(insertSelectionSQL)

	for i, rec := range records {
		values = append(values,
			runID,
			rec.Scan,
			rec.Field,
			rec.FieldID,
			rec.Time,
			rec.Antenna1,
			rec.Antenna2,
			rec.Spw,
			rec.Channel,
			rec.Frequency,
			rec.Correlation,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(insertSelectionPlaceholder)
	}

	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting selections: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.UUID, &r.CreatedAt, &r.LogPath, &r.Found, &r.Unflagged, &r.Reported, &r.Truncated, &r.FullScan, &r.Records); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SqliteStore) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	if run, err = scanRun(stmt.QueryRowContext(ctx, id)); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
	}
	return
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var run *Run
		if run, err = scanRun(rows); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, run)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Records(ctx context.Context, runID int64) (records []flaglog.Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSelectionsSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying selections: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var rec flaglog.Record
		if err = rows.Scan(&rec.Scan, &rec.Field, &rec.FieldID, &rec.Time, &rec.Antenna1, &rec.Antenna2,
			&rec.Spw, &rec.Channel, &rec.Frequency, &rec.Correlation); err != nil {
			err = fmt.Errorf("scanning selection: %w", err)
			return
		}
		records = append(records, rec)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) AntennaTotals(ctx context.Context, limit int) (totals []flaglog.Count, err error) {
	if limit <= 0 {
		limit = -1 // no limit in Sqlite
	}

	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectAntennaTotalsSQL, limit)
	if err != nil {
		err = fmt.Errorf("querying antenna totals: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c flaglog.Count
		if err = rows.Scan(&c.Value, &c.N); err != nil {
			err = fmt.Errorf("scanning antenna total: %w", err)
			return
		}
		totals = append(totals, c)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
