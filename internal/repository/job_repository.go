// internal/repository/job_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"epos-bridge/internal/database"
	"epos-bridge/internal/model"
)

const jobColumns = `id, printer_id, request_id, source, status, total_commands,
	forwarded, dropped, outcome_counts, bytes_sent, error_message, duration_ms,
	started_at, completed_at`

// jobRepository implements JobRepository on PostgreSQL
type jobRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewJobRepository creates a new print job repository
func NewJobRepository(db *database.DB, logger *zap.Logger) JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a job as it starts
func (r *jobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	query := `
		INSERT INTO print_jobs (
			id, printer_id, request_id, source, status, total_commands, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.PrinterID, job.RequestID, job.Source, job.Status,
		job.TotalCommands, job.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create print job", zap.Error(err), zap.String("job_id", job.ID.String()))
		return fmt.Errorf("failed to create print job: %w", err)
	}
	return nil
}

// Complete stores the final summary of a job
func (r *jobRepository) Complete(ctx context.Context, job *model.PrintJob) error {
	query := `
		UPDATE print_jobs SET
			status = $2, forwarded = $3, dropped = $4, outcome_counts = $5,
			bytes_sent = $6, error_message = $7, duration_ms = $8, completed_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, job.Forwarded, job.Dropped, job.OutcomeCounts,
		job.BytesSent, job.ErrorMessage, job.DurationMs, job.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to complete print job", zap.Error(err), zap.String("job_id", job.ID.String()))
		return fmt.Errorf("failed to complete print job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	return nil
}

// GetByID retrieves a job summary
func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	query := `SELECT ` + jobColumns + ` FROM print_jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

// ListByPrinter returns the most recent jobs of a printer
func (r *jobRepository) ListByPrinter(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM print_jobs
		WHERE printer_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, printerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*model.PrintJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			r.logger.Error("Failed to scan print job row", zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*model.PrintJob, error) {
	job := &model.PrintJob{}
	err := row.Scan(
		&job.ID, &job.PrinterID, &job.RequestID, &job.Source, &job.Status,
		&job.TotalCommands, &job.Forwarded, &job.Dropped, &job.OutcomeCounts,
		&job.BytesSent, &job.ErrorMessage, &job.DurationMs, &job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
