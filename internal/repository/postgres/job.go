package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/repository"
)

var ErrDuplicateJob = errors.New("job record already exists")

type JobRepo struct {
	db *DB
}

var _ repository.JobRepository = (*JobRepo)(nil)

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Create(ctx context.Context, rec *domain.JobRecord) error {
	query := `
        INSERT INTO scrape_jobs (id, job_id, source, target, mode, status, error, submitted_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := r.db.Pool.Exec(ctx, query,
		rec.ID,
		rec.JobID,
		rec.Source,
		rec.Target,
		string(rec.Mode),
		string(rec.Status),
		rec.Error,
		rec.SubmittedAt,
		rec.FinishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateJob
		}
		return fmt.Errorf("create job record: %w", err)
	}

	return nil
}

func (r *JobRepo) Update(ctx context.Context, rec *domain.JobRecord) error {
	query := `
        UPDATE scrape_jobs
        SET job_id = $2, status = $3, error = $4, finished_at = $5
        WHERE id = $1
    `

	result, err := r.db.Pool.Exec(ctx, query, rec.ID, rec.JobID, string(rec.Status), rec.Error, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("update job record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*domain.JobRecord, error) {
	query := `
        SELECT id, job_id, source, target, mode, status, error, submitted_at, finished_at
        FROM scrape_jobs
        WHERE id = $1
    `

	rec, err := scanRecord(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job record: %w", err)
	}

	return rec, nil
}

func (r *JobRepo) ListRecent(ctx context.Context, limit int) ([]domain.JobRecord, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}

	query := `
        SELECT id, job_id, source, target, mode, status, error, submitted_at, finished_at
        FROM scrape_jobs
        ORDER BY submitted_at DESC
        LIMIT $1
    `

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var records []domain.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*domain.JobRecord, error) {
	var (
		rec    domain.JobRecord
		mode   string
		status string
	)
	err := row.Scan(
		&rec.ID,
		&rec.JobID,
		&rec.Source,
		&rec.Target,
		&mode,
		&status,
		&rec.Error,
		&rec.SubmittedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Mode = domain.Mode(mode)
	rec.Status = domain.JobStatus(status)
	return &rec, nil
}
