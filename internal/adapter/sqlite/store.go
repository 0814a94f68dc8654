// Package sqlite stores expanded daily observations in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kokorev/ghcndaily/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// DateLayout is how observation dates are stored.
const DateLayout = "2006-01-02"

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/get-observations.sql
var getObservationsSQL string

//go:embed sql/count-observations.sql
var countObservationsSQL string

// Store writes observations to SQLite. It implements pipeline.BatchLoader.
// Rows are appended as they arrive; duplicate dates are kept.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a private in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := strings.Join([]string{"_busy_timeout=5000", "_journal_mode=WAL"}, "&")
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + params, nil
	}
	return fmt.Sprintf("file:%s?%s", path, params), nil
}

// LoadBatch inserts the observations in one transaction.
func (s *Store) LoadBatch(ctx context.Context, obs []domain.DailyObservation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, insertObservationSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		var mflag, qflag, sflag any
		if o.Flags != nil {
			mflag, qflag, sflag = o.Flags.Measurement, o.Flags.Quality, o.Flags.Source
		}
		if _, err := stmt.ExecContext(ctx,
			o.StationID, o.Element, o.Date.Format(DateLayout), o.Value, mflag, qflag, sflag,
		); err != nil {
			return fmt.Errorf("insert observation %s %s %s: %w",
				o.StationID, o.Element, o.Date.Format(DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("batch stored", "observations", len(obs))
	return nil
}

// Observations returns the stored series of one station and element in
// date order. Flags are set only on rows that were stored with them.
func (s *Store) Observations(ctx context.Context, stationID, element string) ([]domain.DailyObservation, error) {
	rows, err := s.db.QueryContext(ctx, getObservationsSQL, stationID, element)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close observation rows", "error", err)
		}
	}()

	out := []domain.DailyObservation{}
	for rows.Next() {
		var (
			o                   domain.DailyObservation
			date                string
			mflag, qflag, sflag sql.NullString
		)
		if err := rows.Scan(&o.StationID, &o.Element, &date, &o.Value, &mflag, &qflag, &sflag); err != nil {
			return nil, err
		}
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		o.Date = t
		if mflag.Valid {
			o.Flags = &domain.Flags{Measurement: mflag.String, Quality: qflag.String, Source: sflag.String}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CountObservations returns how many rows are stored for a station and element.
func (s *Store) CountObservations(ctx context.Context, stationID, element string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, countObservationsSQL, stationID, element).Scan(&n)
	return n, err
}

// CheckReadiness reports whether the database is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
