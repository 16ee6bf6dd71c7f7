package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	mode TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	submitted_at DATETIME NOT NULL,
	finished_at DATETIME
);
`

// JobRepo - история запросов в локальном sqlite файле, для CLI без postgres
type JobRepo struct {
	db *sql.DB
}

var _ repository.JobRepository = (*JobRepo)(nil)

func New(dsn string) (*JobRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// один писатель, иначе параллельный batch ловит SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &JobRepo{db: db}, nil
}

func (r *JobRepo) Close() error {
	return r.db.Close()
}

func (r *JobRepo) Create(ctx context.Context, rec *domain.JobRecord) error {
	query := `
	INSERT INTO scrape_jobs (id, job_id, source, target, mode, status, error, submitted_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.JobID,
		rec.Source,
		rec.Target,
		string(rec.Mode),
		string(rec.Status),
		rec.Error,
		rec.SubmittedAt.UTC(),
		nullTime(rec),
	)
	if err != nil {
		return fmt.Errorf("create job record: %w", err)
	}
	return nil
}

func (r *JobRepo) Update(ctx context.Context, rec *domain.JobRecord) error {
	query := `UPDATE scrape_jobs SET job_id = ?, status = ?, error = ?, finished_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, rec.JobID, string(rec.Status), rec.Error, nullTime(rec), rec.ID)
	if err != nil {
		return fmt.Errorf("update job record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*domain.JobRecord, error) {
	query := `
	SELECT id, job_id, source, target, mode, status, error, submitted_at, finished_at
	FROM scrape_jobs WHERE id = ?
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	FROM scrape_jobs ORDER BY submitted_at DESC LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.JobRecord, error) {
	var (
		rec      domain.JobRecord
		mode     string
		status   string
		finished sql.NullTime
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
		&finished,
	)
	if err != nil {
		return nil, err
	}
	rec.Mode = domain.Mode(mode)
	rec.Status = domain.JobStatus(status)
	if finished.Valid {
		t := finished.Time
		rec.FinishedAt = &t
	}
	return &rec, nil
}

func nullTime(rec *domain.JobRecord) sql.NullTime {
	if rec.FinishedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: rec.FinishedAt.UTC(), Valid: true}
}
