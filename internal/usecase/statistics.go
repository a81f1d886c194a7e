package usecase

import (
	"context"
	"log/slog"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// RecentActivityLimit is the number of records included in a snapshot.
const RecentActivityLimit = 10

// StatisticsAggregator composes gateway queries into a StatisticsSnapshot.
type StatisticsAggregator struct {
	gateway *Gateway
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewStatisticsAggregator(gateway *Gateway, logger *slog.Logger, rec *metrics.Recorder) *StatisticsAggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatisticsAggregator{
		gateway: gateway,
		logger:  logger,
		metrics: rec,
	}
}

// Snapshot runs the count and recent queries concurrently. If any of them
// fails the result is a zeroed snapshot; Snapshot itself never fails.
// The days window is echoed back but does not restrict the aggregation.
func (s *StatisticsAggregator) Snapshot(ctx context.Context, days int) *entity.StatisticsSnapshot {
	const op = "usecase.StatisticsAggregator.Snapshot"

	var (
		total       int64
		predictions = make([]int64, len(entity.Predictions))
		risks       = make([]int64, len(entity.RiskLevels))
		recent      []entity.AnalysisRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.gateway.Count(gctx, entity.AnalysisFilter{})
		total = n
		return err
	})

	for i, p := range entity.Predictions {
		g.Go(func() error {
			n, err := s.gateway.Count(gctx, entity.AnalysisFilter{Prediction: p})
			predictions[i] = n
			return err
		})
	}

	for i, l := range entity.RiskLevels {
		g.Go(func() error {
			n, err := s.gateway.Count(gctx, entity.AnalysisFilter{RiskLevel: l})
			risks[i] = n
			return err
		})
	}

	g.Go(func() error {
		records, err := s.gateway.Recent(gctx, RecentActivityLimit)
		recent = records
		return err
	})

	snap := entity.NewStatisticsSnapshot(days)

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to aggregate statistics, returning zeroed snapshot",
			slog.String("op", op),
			slog.Any("err", err),
		)
		s.metrics.StatisticsDegraded()

		return snap
	}

	snap.TotalAnalyzed = total
	for i, p := range entity.Predictions {
		snap.PredictionCounts[p] = predictions[i]
	}
	for i, l := range entity.RiskLevels {
		snap.RiskDistribution[l] = risks[i]
	}
	if recent != nil {
		snap.RecentActivity = recent
	}

	return snap
}
