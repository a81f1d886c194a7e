// Package entity defines the entities and errors used in the application.
// It includes the AnalysisRecord struct, which represents a persisted URL
// classification, the ephemeral values produced while analyzing a URL and
// the aggregate views computed over stored records.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrStoreUnavailable is returned when the analysis store cannot serve a request.
	ErrStoreUnavailable = errors.New("analysis store unavailable")
	// ErrInvalidLimit is returned when a listing limit is out of the accepted range.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrMalformedCSV is returned when an uploaded CSV stream cannot be parsed.
	ErrMalformedCSV = errors.New("malformed csv")
)

// Prediction is the final three-way classification label of a URL.
type Prediction string

const (
	PredictionPhishing   Prediction = "PHISHING"
	PredictionSuspicious Prediction = "SUSPICIOUS"
	PredictionLegitimate Prediction = "LEGITIMATE"
)

// Predictions lists every prediction in reporting order.
var Predictions = []Prediction{PredictionPhishing, PredictionSuspicious, PredictionLegitimate}

// RiskLevel is the coarse severity band derived from a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
	// RiskCritical is part of the statistics vocabulary only; the classifier never assigns it.
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists every risk band in reporting order, CRITICAL included.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Confidence qualifies how extreme a risk score is.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// AnalysisRecord represents a stored URL classification. There is at most one
// record per URLHash; re-analysis overwrites the record in place.
type AnalysisRecord struct {
	ID                 string             // ID is assigned on first insert and stays stable afterwards.
	URL                string             // URL is the submitted string, unmodified.
	URLHash            string             // URLHash is the hex SHA-256 of URL, the deduplication key.
	Result             AnalysisResult     // Result is the full pipeline output stored as an opaque blob.
	RiskLevel          RiskLevel          // RiskLevel is the band assigned by the classifier.
	Prediction         Prediction         // Prediction is the label assigned by the classifier.
	Probability        float64            // Probability is the risk score rounded to 4 decimal places.
	Confidence         Confidence         // Confidence is HIGH for extreme scores, MEDIUM otherwise.
	FeaturesExtracted  int                // FeaturesExtracted is the number of feature channels computed.
	ProcessingTime     float64            // ProcessingTime is the analysis duration in seconds.
	ThreatIntelligence ThreatIntelligence // ThreatIntelligence is the external reputation annotation.
	CreatedBy          string             // CreatedBy identifies the caller of the latest analysis.
	CreatedAt          time.Time          // CreatedAt is the timestamp of the first insert.
	UpdatedAt          time.Time          // UpdatedAt is the timestamp of the latest write.
}

// AnalysisFilter narrows a count to records whose fields equal the non-empty values.
type AnalysisFilter struct {
	Prediction Prediction
	RiskLevel  RiskLevel
	CreatedBy  string
}
