// Package history persists finished runs and their per-file outcomes in a
// SQLite database under the state directory.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"submerge/internal/config"
	"submerge/internal/pipeline"
)

// Run is one recorded batch run.
type Run struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	Root               string
	CheckLang          string
	SetLang            string
	Workers            int
	DryRun             bool
	Total              int
	Merged             int
	Planned            int
	SkippedHasLanguage int
	SkippedNoSubtitle  int
	Failed             int
}

// OutcomeRecord is one stored per-file outcome.
type OutcomeRecord struct {
	RunID        string
	SourcePath   string
	Kind         string
	SubtitlePath string
	OutputPath   string
	Duration     time.Duration
	ErrorMessage string
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, err
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores a finished run and its outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []pipeline.Outcome) error {
	if run.RunID == "" {
		return errors.New("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, started_at, finished_at, root, check_lang, set_lang,
            workers, dry_run, total, merged, planned,
            skipped_has_language, skipped_no_subtitle, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Root,
		run.CheckLang,
		run.SetLang,
		run.Workers,
		boolToInt(run.DryRun),
		run.Total,
		run.Merged,
		run.Planned,
		run.SkippedHasLanguage,
		run.SkippedNoSubtitle,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, outcome := range outcomes {
		errMessage := ""
		if outcome.Err != nil {
			errMessage = outcome.Err.Error()
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_outcomes (
                run_id, source_path, kind, subtitle_path, output_path,
                duration_ms, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID,
			outcome.Video.Path,
			outcome.Kind.String(),
			nullableString(outcome.SubtitlePath),
			nullableString(outcome.OutputPath),
			outcome.Duration.Milliseconds(),
			nullableString(errMessage),
		)
		if err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = "run_id, started_at, finished_at, root, check_lang, set_lang, workers, dry_run, total, merged, planned, skipped_has_language, skipped_no_subtitle, failed"

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns the stored per-file outcomes of one run in source order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, kind, subtitle_path, output_path, duration_ms, error_message
         FROM run_outcomes WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		var (
			record     OutcomeRecord
			subtitle   sql.NullString
			output     sql.NullString
			durationMS int64
			errMessage sql.NullString
		)
		if err := rows.Scan(
			&record.RunID,
			&record.SourcePath,
			&record.Kind,
			&subtitle,
			&output,
			&durationMS,
			&errMessage,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		record.SubtitlePath = subtitle.String
		record.OutputPath = output.String
		record.Duration = time.Duration(durationMS) * time.Millisecond
		record.ErrorMessage = errMessage.String
		records = append(records, record)
	}
	return records, rows.Err()
}

// Prune deletes runs older than cutoff and returns the number removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE started_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		dryRun      int
	)
	if err := scanner.Scan(
		&run.RunID,
		&startedRaw,
		&finishedRaw,
		&run.Root,
		&run.CheckLang,
		&run.SetLang,
		&run.Workers,
		&dryRun,
		&run.Total,
		&run.Merged,
		&run.Planned,
		&run.SkippedHasLanguage,
		&run.SkippedNoSubtitle,
		&run.Failed,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
