package http

import (
	"time"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

// analyzeRequest represents the structure for a request to analyze a single URL.
// CheckThreatIntel is accepted for compatibility; the annotation is always attached.
type analyzeRequest struct {
	URL              string `json:"url" validate:"required,max=8192"`
	CheckThreatIntel *bool  `json:"check_threat_intel"`
	CreatedBy        string `json:"created_by" validate:"max=255"`
}

// batchRequest represents the structure for a request to analyze several URLs.
type batchRequest struct {
	URLs      []string `json:"urls" validate:"required,dive,max=8192"`
	CreatedBy string   `json:"created_by" validate:"max=255"`
}

// analyzeResponse represents the result of a single URL analysis.
type analyzeResponse struct {
	ID                string                `json:"id"`
	URL               string                `json:"url"`
	AnalysisResult    entity.AnalysisResult `json:"analysis_result"`
	RiskLevel         entity.RiskLevel      `json:"risk_level"`
	Prediction        entity.Prediction     `json:"prediction"`
	Probability       float64               `json:"probability"`
	Confidence        entity.Confidence     `json:"confidence"`
	FeaturesExtracted int                   `json:"features_extracted"`
	ProcessingTime    float64               `json:"processing_time"`
	CreatedAt         time.Time             `json:"created_at"`
}

func toAnalyzeResponse(rec *entity.AnalysisRecord) analyzeResponse {
	return analyzeResponse{
		ID:                rec.ID,
		URL:               rec.URL,
		AnalysisResult:    rec.Result,
		RiskLevel:         rec.RiskLevel,
		Prediction:        rec.Prediction,
		Probability:       rec.Probability,
		Confidence:        rec.Confidence,
		FeaturesExtracted: rec.FeaturesExtracted,
		ProcessingTime:    rec.ProcessingTime,
		CreatedAt:         rec.CreatedAt,
	}
}

// batchItemResponse is either a classification or an error for one batch URL.
type batchItemResponse struct {
	ID          string            `json:"id,omitempty"`
	URL         string            `json:"url"`
	Prediction  entity.Prediction `json:"prediction,omitempty"`
	RiskLevel   entity.RiskLevel  `json:"risk_level,omitempty"`
	Probability *float64          `json:"probability,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type batchResponse struct {
	BatchID        string              `json:"batch_id"`
	Results        []batchItemResponse `json:"results"`
	TotalProcessed int                 `json:"total_processed"`
}

func toBatchResponse(report entity.BatchReport) batchResponse {
	results := make([]batchItemResponse, 0, len(report.Results))

	for _, item := range report.Results {
		if item.Failed() {
			results = append(results, batchItemResponse{
				URL:   item.URL,
				Error: item.Error,
			})
			continue
		}

		probability := item.Probability
		results = append(results, batchItemResponse{
			ID:          item.ID,
			URL:         item.URL,
			Prediction:  item.Prediction,
			RiskLevel:   item.RiskLevel,
			Probability: &probability,
		})
	}

	return batchResponse{
		BatchID:        report.BatchID,
		Results:        results,
		TotalProcessed: report.TotalProcessed,
	}
}

// recordResponse represents a stored analysis record.
type recordResponse struct {
	ID                 string                    `json:"id"`
	URL                string                    `json:"url"`
	URLHash            string                    `json:"url_hash"`
	AnalysisResult     entity.AnalysisResult     `json:"analysis_result"`
	RiskLevel          entity.RiskLevel          `json:"risk_level"`
	Prediction         entity.Prediction         `json:"prediction"`
	Probability        float64                   `json:"probability"`
	Confidence         entity.Confidence         `json:"confidence"`
	FeaturesExtracted  int                       `json:"features_extracted"`
	ProcessingTime     float64                   `json:"processing_time"`
	ThreatIntelligence entity.ThreatIntelligence `json:"threat_intelligence"`
	CreatedBy          string                    `json:"created_by"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

func toRecordResponses(records []entity.AnalysisRecord) []recordResponse {
	out := make([]recordResponse, 0, len(records))

	for _, rec := range records {
		out = append(out, recordResponse{
			ID:                 rec.ID,
			URL:                rec.URL,
			URLHash:            rec.URLHash,
			AnalysisResult:     rec.Result,
			RiskLevel:          rec.RiskLevel,
			Prediction:         rec.Prediction,
			Probability:        rec.Probability,
			Confidence:         rec.Confidence,
			FeaturesExtracted:  rec.FeaturesExtracted,
			ProcessingTime:     rec.ProcessingTime,
			ThreatIntelligence: rec.ThreatIntelligence,
			CreatedBy:          rec.CreatedBy,
			CreatedAt:          rec.CreatedAt,
			UpdatedAt:          rec.UpdatedAt,
		})
	}

	return out
}

// statisticsResponse flattens the per-prediction counts for dashboard clients.
type statisticsResponse struct {
	TotalAnalyzed    int64                       `json:"total_analyzed"`
	PhishingCount    int64                       `json:"phishing_count"`
	SuspiciousCount  int64                       `json:"suspicious_count"`
	LegitimateCount  int64                       `json:"legitimate_count"`
	PredictionCounts map[entity.Prediction]int64 `json:"prediction_counts"`
	RiskDistribution map[entity.RiskLevel]int64  `json:"risk_distribution"`
	RecentActivity   []recordResponse            `json:"recent_activity"`
	Days             int                         `json:"days"`
}

func toStatisticsResponse(snap *entity.StatisticsSnapshot) statisticsResponse {
	return statisticsResponse{
		TotalAnalyzed:    snap.TotalAnalyzed,
		PhishingCount:    snap.PredictionCounts[entity.PredictionPhishing],
		SuspiciousCount:  snap.PredictionCounts[entity.PredictionSuspicious],
		LegitimateCount:  snap.PredictionCounts[entity.PredictionLegitimate],
		PredictionCounts: snap.PredictionCounts,
		RiskDistribution: snap.RiskDistribution,
		RecentActivity:   toRecordResponses(snap.RecentActivity),
		Days:             snap.Days,
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

func toHealthResponse(report entity.HealthReport) healthResponse {
	return healthResponse{
		Status:    report.Status,
		Timestamp: report.Timestamp,
		Database:  report.Database,
	}
}
