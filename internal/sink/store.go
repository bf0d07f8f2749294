package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/gaid/internal/obs"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite sink. It holds one published observation table
// and the log of runs that produced it.
type Store struct {
	db *sql.DB
}

// Run describes one compile for the runs log.
type Run struct {
	ID        string
	CreatedAt time.Time
	Sources   []RunSource
	InputRows int
}

// RunSource records one input consumed by a run.
type RunSource struct {
	Name string
	File string
	Type string
}

// Open creates or opens the SQLite database at path and applies the
// schema. Idempotent, safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection
	// avoids SQLITE_BUSY under the write-heavy publish path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// WriteRun records one compile and upserts its observation table in a
// single transaction. Observations are keyed by their content hash,
// so re-running the same inputs replaces rows in place.
func (s *Store) WriteRun(ctx context.Context, run Run, observations []obs.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, input_rows, output_rows)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.InputRows, len(observations))
	if err != nil {
		return fmt.Errorf("write run: insert run: %w", err)
	}

	for _, src := range run.Sources {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_sources (run_id, name, source_file, source_type)
			VALUES (?, ?, ?, ?)
		`, run.ID, src.Name, src.File, src.Type)
		if err != nil {
			return fmt.Errorf("write run: insert source %q: %w", src.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations
		(row_id, year, country, iso3, metric, value,
		 dataset, source, source_category, source_file, source_type, source_year,
		 run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(row_id) DO UPDATE SET run_id = excluded.run_id
		ON CONFLICT(year, iso3, metric) DO UPDATE SET
			row_id = excluded.row_id,
			country = excluded.country,
			value = excluded.value,
			dataset = excluded.dataset,
			source = excluded.source,
			source_category = excluded.source_category,
			source_file = excluded.source_file,
			source_type = excluded.source_type,
			source_year = excluded.source_year,
			run_id = excluded.run_id
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range observations {
		_, err = stmt.ExecContext(ctx,
			obs.RowID(o),
			o.Year,
			o.Country,
			o.ISO3,
			o.Metric,
			o.Value,
			o.Provenance.Dataset,
			o.Provenance.Source,
			o.Provenance.Category,
			o.Provenance.SourceFile,
			string(o.Provenance.SourceType),
			o.Provenance.SourceYear,
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("write run: insert observation %s: %w", o.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// TableStats summarizes the published table for reporting.
type TableStats struct {
	Rows      int      `json:"rows"`
	Countries int      `json:"countries"`
	Metrics   int      `json:"metrics"`
	Sources   int      `json:"sources"`
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Runs      int      `json:"runs"`
	LastRunID string   `json:"last_run_id,omitempty"`
	TopMetric []string `json:"top_metrics,omitempty"`
}

// Stats reads summary counts from the published table.
func (s *Store) Stats(ctx context.Context) (*TableStats, error) {
	st := &TableStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT iso3),
		       COUNT(DISTINCT metric),
		       COUNT(DISTINCT source),
		       COALESCE(MIN(year), 0),
		       COALESCE(MAX(year), 0)
		FROM observations
	`).Scan(&st.Rows, &st.Countries, &st.Metrics, &st.Sources, &st.YearMin, &st.YearMax)
	if err != nil {
		return nil, fmt.Errorf("stats: observations: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.Runs)
	if err != nil {
		return nil, fmt.Errorf("stats: runs: %w", err)
	}
	if st.Runs > 0 {
		err = s.db.QueryRowContext(ctx, `
			SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1
		`).Scan(&st.LastRunID)
		if err != nil {
			return nil, fmt.Errorf("stats: last run: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric FROM observations
		GROUP BY metric
		ORDER BY COUNT(*) DESC, metric ASC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("stats: top metrics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("stats: scan metric: %w", err)
		}
		st.TopMetric = append(st.TopMetric, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats: top metrics: %w", err)
	}

	return st, nil
}

// ReadObservations reads the full published table back in canonical
// order. Used by tests and the query surface.
func (s *Store) ReadObservations(ctx context.Context) ([]obs.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, country, iso3, metric, value,
		       dataset, source, source_category, source_file, source_type, source_year
		FROM observations
		ORDER BY year ASC, country ASC, metric ASC, value ASC, source ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	defer rows.Close()

	var out []obs.Observation
	for rows.Next() {
		var o obs.Observation
		var srcType string
		err := rows.Scan(
			&o.Year, &o.Country, &o.ISO3, &o.Metric, &o.Value,
			&o.Provenance.Dataset, &o.Provenance.Source, &o.Provenance.Category,
			&o.Provenance.SourceFile, &srcType, &o.Provenance.SourceYear,
		)
		if err != nil {
			return nil, fmt.Errorf("read observations: scan: %w", err)
		}
		o.Provenance.SourceType = obs.SourceType(srcType)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	return out, nil
}
