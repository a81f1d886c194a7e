package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

type MockAnalysisRepository struct {
	mock.Mock
}

func (r *MockAnalysisRepository) Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error) {
	args := r.Called(ctx, rec)
	saved, _ := args.Get(0).(*entity.AnalysisRecord)
	return saved, args.Error(1)
}

func (r *MockAnalysisRepository) Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error) {
	args := r.Called(ctx, filter)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (r *MockAnalysisRepository) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	args := r.Called(ctx, limit)
	records, _ := args.Get(0).([]entity.AnalysisRecord)
	return records, args.Error(1)
}

func (r *MockAnalysisRepository) Ping(ctx context.Context) error {
	args := r.Called(ctx)
	return args.Error(0)
}

// failingRepository wraps a repository and fails upserts of the given URLs.
type failingRepository struct {
	analysisRepository
	failURLs map[string]bool
	err      error
}

func (r *failingRepository) Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error) {
	if r.failURLs[rec.URL] {
		return nil, r.err
	}
	return r.analysisRepository.Upsert(ctx, rec)
}
