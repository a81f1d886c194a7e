package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

type AnalysisUseCaseTestSuite struct {
	suite.Suite
	errUnknown error
	analyzer   *analyzer.Analyzer
	repoMock   *MockAnalysisRepository
	uc         *AnalysisUseCase
}

func (suite *AnalysisUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.analyzer = analyzer.New(analyzer.DefaultConfig())
}

func (suite *AnalysisUseCaseTestSuite) SetupSubTest() {
	suite.repoMock = new(MockAnalysisRepository)
	suite.uc = New(suite.analyzer, suite.repoMock, WithLogger(discardLogger()))
}

func (suite *AnalysisUseCaseTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
}

func (suite *AnalysisUseCaseTestSuite) TestAnalyzeURL() {
	suite.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec, err := suite.uc.AnalyzeURL(ctx, "https://example.com", "alice")

		suite.Error(err)
		suite.ErrorIs(err, context.Canceled)
		suite.Nil(rec)
	})

	suite.Run("store failure returns fallback record", func() {
		suite.repoMock.
			On("Upsert", context.Background(), mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		rec, err := suite.uc.AnalyzeURL(context.Background(), "https://example.com/login", "alice")

		suite.NoError(err)
		suite.NotNil(rec)
		suite.NotEmpty(rec.ID)
		suite.Equal(entity.PredictionSuspicious, rec.Prediction)
		suite.False(rec.CreatedAt.IsZero())
	})

	suite.Run("default created by", func() {
		suite.repoMock.
			On("Upsert", context.Background(), mock.MatchedBy(func(rec *entity.AnalysisRecord) bool {
				return rec.CreatedBy == DefaultCreatedBy
			})).
			Once().
			Return(&entity.AnalysisRecord{ID: "stored", CreatedBy: DefaultCreatedBy}, nil)

		rec, err := suite.uc.AnalyzeURL(context.Background(), "https://example.com", "")

		suite.NoError(err)
		suite.Equal("stored", rec.ID)
	})
}

func (suite *AnalysisUseCaseTestSuite) TestRecentAnalyses() {
	suite.Run("limit too small", func() {
		records, err := suite.uc.RecentAnalyses(context.Background(), 0)

		suite.ErrorIs(err, entity.ErrInvalidLimit)
		suite.Nil(records)
	})

	suite.Run("limit too large", func() {
		records, err := suite.uc.RecentAnalyses(context.Background(), MaxRecentLimit+1)

		suite.ErrorIs(err, entity.ErrInvalidLimit)
		suite.Nil(records)
	})

	suite.Run("store failure", func() {
		suite.repoMock.
			On("Recent", context.Background(), 20).
			Once().
			Return(nil, suite.errUnknown)

		records, err := suite.uc.RecentAnalyses(context.Background(), 20)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(records)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("Recent", context.Background(), 2).
			Once().
			Return([]entity.AnalysisRecord{{ID: "a"}, {ID: "b"}}, nil)

		records, err := suite.uc.RecentAnalyses(context.Background(), 2)

		suite.NoError(err)
		suite.Len(records, 2)
	})
}

func (suite *AnalysisUseCaseTestSuite) TestHealth() {
	suite.Run("database connected", func() {
		suite.repoMock.
			On("Ping", context.Background()).
			Once().
			Return(nil)

		report := suite.uc.Health(context.Background())

		suite.Equal(entity.HealthStatusHealthy, report.Status)
		suite.Equal(entity.DatabaseConnected, report.Database)
		suite.False(report.Timestamp.IsZero())
	})

	suite.Run("database disconnected", func() {
		suite.repoMock.
			On("Ping", context.Background()).
			Once().
			Return(entity.ErrStoreUnavailable)

		report := suite.uc.Health(context.Background())

		suite.Equal(entity.HealthStatusHealthy, report.Status)
		suite.Equal(entity.DatabaseDisconnected, report.Database)
	})
}

func (suite *AnalysisUseCaseTestSuite) TestAnalyzeCSV() {
	suite.Run("malformed csv", func() {
		report, err := suite.uc.AnalyzeCSV(context.Background(), strings.NewReader("url\n\"broken\n"), "")

		suite.ErrorIs(err, entity.ErrMalformedCSV)
		suite.Empty(report.Results)
	})

	suite.Run("missing column yields empty batch", func() {
		report, err := suite.uc.AnalyzeCSV(context.Background(), strings.NewReader("link\nhttps://a.example.com\n"), "")

		suite.NoError(err)
		suite.Empty(report.Results)
		suite.Zero(report.TotalProcessed)
	})
}

func TestAnalysisUseCase(t *testing.T) {
	suite.Run(t, new(AnalysisUseCaseTestSuite))
}

func TestAnalysisUseCase_EndToEnd(t *testing.T) {
	ctx := context.Background()
	uc := New(analyzer.New(analyzer.DefaultConfig()), memory.NewAnalysisRepository(),
		WithLogger(discardLogger()),
		WithMaxBatchItems(2),
	)

	first, err := uc.AnalyzeURL(ctx, "https://example.com/login", "alice")
	if err != nil {
		t.Fatalf("AnalyzeURL failed: %v", err)
	}

	report, err := uc.AnalyzeCSV(ctx, strings.NewReader("url\nhttps://example.com/login\nhttps://a.example.com\nhttps://b.example.com\n"), "bob")
	if err != nil {
		t.Fatalf("AnalyzeCSV failed: %v", err)
	}

	if report.TotalProcessed != 2 {
		t.Errorf("expected 2 processed items, got %d", report.TotalProcessed)
	}
	if report.Results[0].ID != first.ID {
		t.Errorf("expected re-analysis to keep id %s, got %s", first.ID, report.Results[0].ID)
	}

	snap := uc.Statistics(ctx, 30)
	if snap.TotalAnalyzed != 2 {
		t.Errorf("expected 2 records, got %d", snap.TotalAnalyzed)
	}

	batch := uc.AnalyzeBatch(ctx, []string{"https://c.example.com"}, "")
	if batch.TotalProcessed != 1 || batch.Results[0].Failed() {
		t.Errorf("unexpected batch report: %+v", batch)
	}

	recent, err := uc.RecentAnalyses(ctx, DefaultRecentLimit)
	if err != nil {
		t.Fatalf("RecentAnalyses failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("expected 3 recent records, got %d", len(recent))
	}
}
