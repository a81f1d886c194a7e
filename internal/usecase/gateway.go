package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"
)

type analysisRepository interface {
	Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error)
	Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error)
	Ping(ctx context.Context) error
}

// HashURL returns the deduplication key of rawURL: the lowercase hex SHA-256
// of its bytes. The URL is not normalized.
func HashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// SaveOutcome is the result of persisting an analysis. When Persisted is
// false, Record carries a fresh identifier that exists nowhere in the store
// and Cause holds the store error.
type SaveOutcome struct {
	Record    entity.AnalysisRecord
	Persisted bool
	Cause     error
}

// Gateway is the single point of access to the analysis store.
type Gateway struct {
	repo    analysisRepository
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
}

func NewGateway(repo analysisRepository, logger *slog.Logger, rec *metrics.Recorder) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		repo:    repo,
		logger:  logger,
		metrics: rec,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Save upserts the analysis of rawURL keyed by its hash. It never returns an
// error: a store failure yields a non-persisted outcome.
func (g *Gateway) Save(
	ctx context.Context,
	rawURL string,
	result entity.AnalysisResult,
	processingTime float64,
	createdBy string,
) SaveOutcome {
	const op = "usecase.Gateway.Save"

	now := g.now().UTC().Truncate(time.Microsecond)

	rec := entity.AnalysisRecord{
		ID:                 g.newID(),
		URL:                rawURL,
		URLHash:            HashURL(rawURL),
		Result:             result,
		RiskLevel:          result.RiskLevel,
		Prediction:         result.Prediction,
		Probability:        result.Probability,
		Confidence:         result.Confidence,
		FeaturesExtracted:  result.FeaturesExtracted,
		ProcessingTime:     processingTime,
		ThreatIntelligence: result.ThreatIntelligence,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	saved, err := g.repo.Upsert(ctx, &rec)
	if err != nil {
		g.logger.Warn("analysis not persisted, returning fallback id",
			slog.String("op", op),
			slog.String("url_hash", rec.URLHash),
			slog.String("fallback_id", rec.ID),
			slog.Any("err", err),
		)
		g.metrics.PersistenceFallback("save")

		return SaveOutcome{
			Record:    rec,
			Persisted: false,
			Cause:     fmt.Errorf("%s: %w", op, err),
		}
	}

	return SaveOutcome{Record: *saved, Persisted: true}
}

// Count returns the number of stored records matching filter.
func (g *Gateway) Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error) {
	const op = "usecase.Gateway.Count"

	n, err := g.repo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// Recent returns at most limit records ordered by creation time, newest first.
func (g *Gateway) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	const op = "usecase.Gateway.Recent"

	records, err := g.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	const op = "usecase.Gateway.Ping"

	if err := g.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
