// Package usecase holds the application operations: analyzing URLs and
// persisting the results, batch and CSV ingestion, statistics and health.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"
)

const (
	DefaultCreatedBy = "system"

	DefaultRecentLimit = 20
	MaxRecentLimit     = 1000
)

type Option func(*AnalysisUseCase)

func WithLogger(logger *slog.Logger) Option {
	return func(uc *AnalysisUseCase) {
		uc.logger = logger
	}
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(uc *AnalysisUseCase) {
		uc.metrics = rec
	}
}

func WithMaxBatchItems(n int) Option {
	return func(uc *AnalysisUseCase) {
		uc.maxBatchItems = n
	}
}

type AnalysisUseCase struct {
	analyzer      *analyzer.Analyzer
	gateway       *Gateway
	stats         *StatisticsAggregator
	batch         *BatchIngestor
	logger        *slog.Logger
	metrics       *metrics.Recorder
	maxBatchItems int
	now           func() time.Time
}

func New(a *analyzer.Analyzer, repo analysisRepository, opts ...Option) *AnalysisUseCase {
	uc := &AnalysisUseCase{
		analyzer:      a,
		logger:        slog.Default(),
		maxBatchItems: DefaultMaxBatchItems,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.gateway = NewGateway(repo, uc.logger, uc.metrics)
	uc.stats = NewStatisticsAggregator(uc.gateway, uc.logger, uc.metrics)
	uc.batch = NewBatchIngestor(a, uc.gateway, uc.maxBatchItems, uc.logger, uc.metrics)

	return uc
}

// AnalyzeURL classifies rawURL and persists the result. A store failure does
// not fail the call: the returned record then carries a non-persisted id.
// An error is returned only when ctx is already done.
func (uc *AnalysisUseCase) AnalyzeURL(ctx context.Context, rawURL, createdBy string) (*entity.AnalysisRecord, error) {
	const op = "usecase.AnalysisUseCase.AnalyzeURL"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, elapsed := analyzeTimed(uc.analyzer, uc.metrics, rawURL)
	out := uc.gateway.Save(ctx, rawURL, res, elapsed, createdByOrDefault(createdBy))

	return &out.Record, nil
}

func (uc *AnalysisUseCase) AnalyzeBatch(ctx context.Context, urls []string, createdBy string) entity.BatchReport {
	return uc.batch.Ingest(ctx, urls, createdByOrDefault(createdBy))
}

// AnalyzeCSV ingests the "url" column of a CSV stream as a batch.
func (uc *AnalysisUseCase) AnalyzeCSV(ctx context.Context, r io.Reader, createdBy string) (entity.BatchReport, error) {
	const op = "usecase.AnalysisUseCase.AnalyzeCSV"

	urls, err := ParseURLColumn(r)
	if err != nil {
		return entity.BatchReport{}, fmt.Errorf("%s: %w", op, err)
	}

	return uc.batch.Ingest(ctx, urls, createdByOrDefault(createdBy)), nil
}

func (uc *AnalysisUseCase) Statistics(ctx context.Context, days int) *entity.StatisticsSnapshot {
	return uc.stats.Snapshot(ctx, days)
}

// RecentAnalyses returns the limit most recent records. Limit must be within
// [1, MaxRecentLimit].
func (uc *AnalysisUseCase) RecentAnalyses(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	const op = "usecase.AnalysisUseCase.RecentAnalyses"

	if limit < 1 || limit > MaxRecentLimit {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidLimit)
	}

	records, err := uc.gateway.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (uc *AnalysisUseCase) Health(ctx context.Context) entity.HealthReport {
	const op = "usecase.AnalysisUseCase.Health"

	report := entity.HealthReport{
		Status:    entity.HealthStatusHealthy,
		Database:  entity.DatabaseConnected,
		Timestamp: uc.now().UTC(),
	}

	if err := uc.gateway.Ping(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Warn("store ping failed",
				slog.String("op", op),
				slog.Any("err", err),
			)
		}
		report.Database = entity.DatabaseDisconnected
	}

	return report
}

func analyzeTimed(a *analyzer.Analyzer, rec *metrics.Recorder, rawURL string) (entity.AnalysisResult, float64) {
	start := time.Now()
	res := a.Analyze(rawURL)
	elapsed := time.Since(start).Seconds()

	rec.ObserveAnalysis(string(res.Prediction), elapsed)

	return res, elapsed
}

func createdByOrDefault(createdBy string) string {
	if createdBy == "" {
		return DefaultCreatedBy
	}
	return createdBy
}
