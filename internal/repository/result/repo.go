package result

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/watermarker/internal/model"
)

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrResultNotFound = errors.New("result not found")
)

// db is satisfied by *sql.DB and *dbpg.DB.
type db interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id          TEXT PRIMARY KEY,
		target_dir  TEXT NOT NULL,
		started_at  BIGINT NOT NULL,
		finished_at BIGINT NOT NULL,
		succeeded   INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		bytes       BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		job_id      TEXT PRIMARY KEY,
		batch_id    TEXT NOT NULL,
		source_path TEXT NOT NULL,
		state       TEXT NOT NULL,
		output_path TEXT NOT NULL,
		format      TEXT NOT NULL,
		width       INTEGER NOT NULL,
		height      INTEGER NOT NULL,
		bytes       BIGINT NOT NULL,
		error       TEXT NOT NULL,
		duration_ms BIGINT NOT NULL
	)`,
}

// Repository journals batch summaries and job results.
type Repository struct {
	db db
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db db) *Repository {
	return &Repository{db: db}
}

// Migrate creates the journal tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

// SaveBatch inserts the batch summary and every job result of report.
func (r *Repository) SaveBatch(ctx context.Context, report *model.Report) error {
	query := `
		INSERT INTO batches (id, target_dir, started_at, finished_at, succeeded, failed, bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	s := report.Summary()
	_, err := r.db.ExecContext(
		ctx, query, s.ID.String(), s.TargetDir, s.StartedAt.UnixMilli(), s.FinishedAt.UnixMilli(),
		s.Succeeded, s.Failed, s.Bytes,
	)
	if err != nil {
		return fmt.Errorf("save: failed to save batch: %w", err)
	}

	for _, res := range report.Results {
		if err := r.SaveResult(ctx, report.BatchID, res); err != nil {
			return err
		}
	}

	return nil
}

// SaveResult inserts a single job result.
func (r *Repository) SaveResult(ctx context.Context, batchID uuid.UUID, res model.JobResult) error {
	query := `
		INSERT INTO results (job_id, batch_id, source_path, state, output_path, format, width, height, bytes, error, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx, query, res.JobID.String(), batchID.String(), res.SourcePath, string(res.State), res.OutputPath,
		res.Format.String(), res.Width, res.Height, res.Bytes, res.Error, res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save: failed to save result for %s: %w", res.SourcePath, err)
	}

	return nil
}

// GetBatch retrieves a batch summary by ID.
func (r *Repository) GetBatch(ctx context.Context, id uuid.UUID) (model.BatchSummary, error) {
	query := `
		SELECT target_dir, started_at, finished_at, succeeded, failed, bytes
		FROM batches
		WHERE id = $1
	`

	var (
		s                     model.BatchSummary
		startedMs, finishedMs int64
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&s.TargetDir, &startedMs, &finishedMs, &s.Succeeded, &s.Failed, &s.Bytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BatchSummary{}, ErrBatchNotFound
		}

		return model.BatchSummary{}, fmt.Errorf("get: failed to get batch: %w", err)
	}

	s.ID = id
	s.StartedAt = time.UnixMilli(startedMs)
	s.FinishedAt = time.UnixMilli(finishedMs)

	return s, nil
}

// GetResult retrieves a job result by job ID.
func (r *Repository) GetResult(ctx context.Context, jobID uuid.UUID) (model.JobResult, error) {
	query := `
		SELECT source_path, state, output_path, format, width, height, bytes, error, duration_ms
		FROM results
		WHERE job_id = $1
	`

	var (
		res        model.JobResult
		state      string
		format     string
		durationMs int64
	)
	err := r.db.QueryRowContext(ctx, query, jobID.String()).
		Scan(&res.SourcePath, &state, &res.OutputPath, &format, &res.Width, &res.Height, &res.Bytes, &res.Error, &durationMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.JobResult{}, ErrResultNotFound
		}

		return model.JobResult{}, fmt.Errorf("get: failed to get result: %w", err)
	}

	if err := res.Format.UnmarshalText([]byte(format)); err != nil {
		return model.JobResult{}, fmt.Errorf("get: %w", err)
	}

	res.JobID = jobID
	res.State = model.JobState(state)
	res.Duration = time.Duration(durationMs) * time.Millisecond

	return res, nil
}
