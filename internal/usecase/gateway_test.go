package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scrape(rec *metrics.Recorder) string {
	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	return string(body)
}

type GatewayTestSuite struct {
	suite.Suite
	errUnknown error
	now        time.Time
	analyzer   *analyzer.Analyzer
	repoMock   *MockAnalysisRepository
	metrics    *metrics.Recorder
	gateway    *Gateway
}

func (suite *GatewayTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	suite.analyzer = analyzer.New(analyzer.DefaultConfig())
}

func (suite *GatewayTestSuite) SetupSubTest() {
	rec, err := metrics.New()
	suite.Require().NoError(err)

	suite.metrics = rec
	suite.repoMock = new(MockAnalysisRepository)
	suite.gateway = NewGateway(suite.repoMock, discardLogger(), rec)
	suite.gateway.now = func() time.Time { return suite.now }
	suite.gateway.newID = func() string { return "proposed-id" }
}

func (suite *GatewayTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestSave() {
	const url = "https://example.com/login"

	suite.Run("store failure returns fallback", func() {
		suite.repoMock.
			On("Upsert", context.Background(), mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		out := suite.gateway.Save(context.Background(), url, suite.analyzer.Analyze(url), 0.001, "alice")

		suite.False(out.Persisted)
		suite.ErrorIs(out.Cause, suite.errUnknown)
		suite.Equal("proposed-id", out.Record.ID)
		suite.Equal(url, out.Record.URL)
		suite.Equal(suite.now.Truncate(time.Microsecond), out.Record.CreatedAt)
		suite.Contains(scrape(suite.metrics), `phishing_persistence_fallbacks_total{operation="save"} 1`)
	})

	suite.Run("success", func() {
		stored := &entity.AnalysisRecord{ID: "stored-id", URL: url, URLHash: HashURL(url)}

		suite.repoMock.
			On("Upsert", context.Background(), mock.MatchedBy(func(rec *entity.AnalysisRecord) bool {
				return rec.ID == "proposed-id" &&
					rec.URLHash == HashURL(url) &&
					rec.CreatedBy == "alice" &&
					rec.Prediction == entity.PredictionSuspicious &&
					rec.ProcessingTime == 0.001 &&
					rec.CreatedAt.Equal(suite.now.Truncate(time.Microsecond)) &&
					rec.UpdatedAt.Equal(rec.CreatedAt)
			})).
			Once().
			Return(stored, nil)

		out := suite.gateway.Save(context.Background(), url, suite.analyzer.Analyze(url), 0.001, "alice")

		suite.True(out.Persisted)
		suite.NoError(out.Cause)
		suite.Equal("stored-id", out.Record.ID)
	})
}

func (suite *GatewayTestSuite) TestCount() {
	suite.Run("unknown error", func() {
		suite.repoMock.
			On("Count", context.Background(), entity.AnalysisFilter{}).
			Once().
			Return(int64(0), suite.errUnknown)

		n, err := suite.gateway.Count(context.Background(), entity.AnalysisFilter{})

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Zero(n)
	})

	suite.Run("success", func() {
		filter := entity.AnalysisFilter{Prediction: entity.PredictionPhishing}

		suite.repoMock.
			On("Count", context.Background(), filter).
			Once().
			Return(int64(4), nil)

		n, err := suite.gateway.Count(context.Background(), filter)

		suite.NoError(err)
		suite.Equal(int64(4), n)
	})
}

func (suite *GatewayTestSuite) TestRecent() {
	suite.Run("unknown error", func() {
		suite.repoMock.
			On("Recent", context.Background(), 5).
			Once().
			Return(nil, suite.errUnknown)

		records, err := suite.gateway.Recent(context.Background(), 5)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(records)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("Recent", context.Background(), 5).
			Once().
			Return([]entity.AnalysisRecord{{ID: "a"}, {ID: "b"}}, nil)

		records, err := suite.gateway.Recent(context.Background(), 5)

		suite.NoError(err)
		suite.Len(records, 2)
	})
}

func TestGateway(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func TestHashURL(t *testing.T) {
	if got := HashURL(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected hash of empty string: %s", got)
	}
	if HashURL("https://example.com") == HashURL("https://example.com/") {
		t.Error("distinct strings must not share a hash")
	}
}

func TestGateway_Deduplication(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAnalysisRepository()
	a := analyzer.New(analyzer.DefaultConfig())

	g := NewGateway(repo, discardLogger(), nil)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return t0 }

	url := "https://example.com/login"

	first := g.Save(ctx, url, a.Analyze(url), 0.001, "alice")

	g.now = func() time.Time { return t0.Add(time.Hour) }
	second := g.Save(ctx, url, a.Analyze(url), 0.002, "bob")

	if !first.Persisted || !second.Persisted {
		t.Fatal("expected both saves to be persisted")
	}
	if first.Record.ID != second.Record.ID {
		t.Errorf("expected stable id, got %s and %s", first.Record.ID, second.Record.ID)
	}
	if second.Record.CreatedBy != "bob" || second.Record.ProcessingTime != 0.002 {
		t.Errorf("expected fields of the second save, got %+v", second.Record)
	}
	if !second.Record.CreatedAt.Equal(t0) || !second.Record.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("unexpected timestamps: created %v updated %v", second.Record.CreatedAt, second.Record.UpdatedAt)
	}

	n, err := g.Count(ctx, entity.AnalysisFilter{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}
