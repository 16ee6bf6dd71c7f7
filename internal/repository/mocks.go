package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

type MockJobRepository struct {
	mu      sync.RWMutex
	records map[string]domain.JobRecord
}

var _ JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		records: make(map[string]domain.JobRecord),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, rec *domain.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = *rec
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, rec *domain.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; !ok {
		return domain.ErrJobNotFound
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*domain.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &rec, nil
}

func (m *MockJobRepository) ListRecent(ctx context.Context, limit int) ([]domain.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := make([]domain.JobRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
