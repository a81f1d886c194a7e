package usecase

import (
	"context"
	"log/slog"

	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultMaxBatchItems = 100

	errNotPersisted = "analysis could not be persisted"
)

// BatchIngestor analyzes and persists a list of URLs one by one.
type BatchIngestor struct {
	analyzer *analyzer.Analyzer
	gateway  *Gateway
	maxItems int
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

func NewBatchIngestor(a *analyzer.Analyzer, gateway *Gateway, maxItems int, logger *slog.Logger, rec *metrics.Recorder) *BatchIngestor {
	if maxItems <= 0 {
		maxItems = DefaultMaxBatchItems
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchIngestor{
		analyzer: a,
		gateway:  gateway,
		maxItems: maxItems,
		logger:   logger,
		metrics:  rec,
	}
}

// Ingest processes at most maxItems URLs in input order and drops the rest.
// A failed item is reported in place and does not stop the batch.
func (b *BatchIngestor) Ingest(ctx context.Context, urls []string, createdBy string) entity.BatchReport {
	const op = "usecase.BatchIngestor.Ingest"

	batchID, err := gonanoid.New()
	if err != nil {
		b.logger.Warn("failed to generate batch id",
			slog.String("op", op),
			slog.Any("err", err),
		)
	}

	if len(urls) > b.maxItems {
		urls = urls[:b.maxItems]
	}

	results := make([]entity.BatchItem, 0, len(urls))

	for _, u := range urls {
		res, elapsed := analyzeTimed(b.analyzer, b.metrics, u)
		out := b.gateway.Save(ctx, u, res, elapsed, createdBy)

		if !out.Persisted {
			b.logger.Warn("batch item failed",
				slog.String("op", op),
				slog.String("batch_id", batchID),
				slog.String("url_hash", out.Record.URLHash),
				slog.Any("err", out.Cause),
			)
			b.metrics.BatchItem(metrics.OutcomeFailed)

			results = append(results, entity.BatchItem{
				URL:   u,
				Error: errNotPersisted,
			})
			continue
		}

		b.metrics.BatchItem(metrics.OutcomeOK)

		results = append(results, entity.BatchItem{
			ID:          out.Record.ID,
			URL:         u,
			Prediction:  res.Prediction,
			RiskLevel:   res.RiskLevel,
			Probability: res.Probability,
		})
	}

	return entity.BatchReport{
		BatchID:        batchID,
		Results:        results,
		TotalProcessed: len(results),
	}
}
