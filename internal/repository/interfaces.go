package repository

import (
	"context"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

// JobRepository - история запросов (sync и async).
// Реализации: postgres, sqlite и in-memory мок.
type JobRepository interface {
	Create(ctx context.Context, rec *domain.JobRecord) error
	Update(ctx context.Context, rec *domain.JobRecord) error
	GetByID(ctx context.Context, id string) (*domain.JobRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.JobRecord, error)
}

const DefaultListLimit = 20
