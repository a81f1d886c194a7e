package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/migrations"
	"github.com/vadimbarashkov/phishing-detector/pkg/sqlite"
)

func setupSQLiteRepository(t testing.TB) *AnalysisRepository {
	t.Helper()

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "analysis.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := sqlite.RunMigrations(db, migrations.FS, migrations.SQLiteDir); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewAnalysisRepository(db)
}

func newRecord(id, url, hash, createdBy string, at time.Time) *entity.AnalysisRecord {
	res := analyzer.New(analyzer.DefaultConfig()).Analyze(url)

	return &entity.AnalysisRecord{
		ID:                 id,
		URL:                url,
		URLHash:            hash,
		Result:             res,
		RiskLevel:          res.RiskLevel,
		Prediction:         res.Prediction,
		Probability:        res.Probability,
		Confidence:         res.Confidence,
		FeaturesExtracted:  res.FeaturesExtracted,
		ProcessingTime:     0.001,
		ThreatIntelligence: res.ThreatIntelligence,
		CreatedBy:          createdBy,
		CreatedAt:          at,
		UpdatedAt:          at,
	}
}

func TestAnalysisRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("upsert is idempotent per url hash", func(t *testing.T) {
		repo := setupSQLiteRepository(t)

		first, err := repo.Upsert(ctx, newRecord("id-1", "https://example.com/login", "h1", "alice", t0))
		require.NoError(t, err)

		second, err := repo.Upsert(ctx, newRecord("id-2", "https://example.com/login", "h1", "bob", t0.Add(time.Minute)))
		require.NoError(t, err)

		assert.Equal(t, "id-1", first.ID)
		assert.Equal(t, "id-1", second.ID)
		assert.Equal(t, "bob", second.CreatedBy)
		assert.True(t, second.CreatedAt.Equal(t0))
		assert.True(t, second.UpdatedAt.Equal(t0.Add(time.Minute)))

		n, err := repo.Count(ctx, entity.AnalysisFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("blobs round trip", func(t *testing.T) {
		repo := setupSQLiteRepository(t)

		in := newRecord("id-1", "https://example.com/login", "h1", "system", t0)

		out, err := repo.Upsert(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, in.Result.FeatureSummary, out.Result.FeatureSummary)
		assert.Equal(t, in.Result.Prediction, out.Result.Prediction)
		assert.Equal(t, in.ThreatIntelligence, out.ThreatIntelligence)
		assert.Equal(t, in.Probability, out.Probability)
	})

	t.Run("count by filter", func(t *testing.T) {
		repo := setupSQLiteRepository(t)

		_, err := repo.Upsert(ctx, newRecord("id-1", "https://example.com/login", "h1", "alice", t0))
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, newRecord("id-2", "", "h2", "alice", t0))
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, newRecord("id-3", "http://x", "h3", "bob", t0))
		require.NoError(t, err)

		n, err := repo.Count(ctx, entity.AnalysisFilter{Prediction: entity.PredictionSuspicious})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.Count(ctx, entity.AnalysisFilter{RiskLevel: entity.RiskLow})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.Count(ctx, entity.AnalysisFilter{CreatedBy: "alice"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.Count(ctx, entity.AnalysisFilter{RiskLevel: entity.RiskCritical})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("recent is newest first", func(t *testing.T) {
		repo := setupSQLiteRepository(t)

		for i, hash := range []string{"h1", "h2", "h3"} {
			_, err := repo.Upsert(ctx, newRecord(hash, "https://example.com/"+hash, hash, "system", t0.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		records, err := repo.Recent(ctx, 2)
		require.NoError(t, err)

		require.Len(t, records, 2)
		assert.Equal(t, "h3", records[0].ID)
		assert.Equal(t, "h2", records[1].ID)
	})

	t.Run("ping", func(t *testing.T) {
		repo := setupSQLiteRepository(t)

		assert.NoError(t, repo.Ping(ctx))
	})
}
