// Package memory implements the analysis repository as a mutex-guarded map.
// It backs the "memory" storage driver and serves as the substitution store
// in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

type AnalysisRepository struct {
	mu      sync.RWMutex
	records map[string]entity.AnalysisRecord
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{
		records: make(map[string]entity.AnalysisRecord),
	}
}

// Upsert stores rec under its URL hash. An existing record keeps its id and
// created_at; every other field is replaced.
func (r *AnalysisRepository) Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error) {
	const op = "adapter.repository.memory.AnalysisRepository.Upsert"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *rec
	if prev, ok := r.records[rec.URLHash]; ok {
		saved.ID = prev.ID
		saved.CreatedAt = prev.CreatedAt
	}
	r.records[rec.URLHash] = saved

	return &saved, nil
}

func (r *AnalysisRepository) Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error) {
	const op = "adapter.repository.memory.AnalysisRepository.Count"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if matches(rec, filter) {
			n++
		}
	}

	return n, nil
}

func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	const op = "adapter.repository.memory.AnalysisRepository.Recent"

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidLimit)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	records := make([]entity.AnalysisRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matches(rec entity.AnalysisRecord, f entity.AnalysisFilter) bool {
	if f.Prediction != "" && rec.Prediction != f.Prediction {
		return false
	}
	if f.RiskLevel != "" && rec.RiskLevel != f.RiskLevel {
		return false
	}
	if f.CreatedBy != "" && rec.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}
