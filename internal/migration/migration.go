package migration

import (
	"context"

	"rxprev/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The statements stay
// within the SQL accepted by both PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}

	if err := r.createRunRowsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create run_rows table")
	}

	if err := r.createRunBucketsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create run_buckets table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Floats are stored as text so that NaN and infinite odds ratios survive
// both backends.
func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			gene TEXT NOT NULL,
			test TEXT NOT NULL,
			major_subtypes TEXT NOT NULL,
			subtypes BOOLEAN NOT NULL,
			flag_selection BOOLEAN NOT NULL,
			source TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at TEXT NOT NULL,
			row_count INTEGER NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createRunRowsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_rows (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			position INTEGER NOT NULL,
			aa TEXT NOT NULL,
			max_percent TEXT NOT NULL,
			max_total INTEGER NOT NULL,
			max_cases INTEGER NOT NULL,
			max_subtype TEXT NOT NULL,
			test TEXT NOT NULL,
			p_value TEXT NOT NULL,
			fold_change TEXT NOT NULL,
			odds_ratio TEXT NOT NULL,
			degenerate BOOLEAN NOT NULL,
			selected BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, ordinal)
		)
	`)
	return err
}

func (r *MigrationRunner) createRunBucketsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_buckets (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			cohort TEXT NOT NULL,
			subtype TEXT NOT NULL,
			cases INTEGER NOT NULL,
			total INTEGER NOT NULL,
			percent TEXT NOT NULL,
			PRIMARY KEY (run_id, ordinal, cohort, subtype)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_runs_gene ON runs(gene)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
