package entity

import "time"

// StatisticsSnapshot is a point-in-time aggregate view over stored records.
// It is recomputed on every request and never persisted.
type StatisticsSnapshot struct {
	TotalAnalyzed    int64
	PredictionCounts map[Prediction]int64
	RiskDistribution map[RiskLevel]int64
	RecentActivity   []AnalysisRecord
	Days             int
}

// NewStatisticsSnapshot returns a snapshot with every prediction and risk band
// present and set to zero.
func NewStatisticsSnapshot(days int) *StatisticsSnapshot {
	s := &StatisticsSnapshot{
		PredictionCounts: make(map[Prediction]int64, len(Predictions)),
		RiskDistribution: make(map[RiskLevel]int64, len(RiskLevels)),
		RecentActivity:   []AnalysisRecord{},
		Days:             days,
	}

	for _, p := range Predictions {
		s.PredictionCounts[p] = 0
	}
	for _, l := range RiskLevels {
		s.RiskDistribution[l] = 0
	}

	return s
}

// BatchItem is the outcome of one URL within a batch. Exactly one of
// Error or the classification fields is meaningful.
type BatchItem struct {
	ID          string
	URL         string
	Prediction  Prediction
	RiskLevel   RiskLevel
	Probability float64
	Error       string
}

// Failed reports whether the item carries an error instead of a classification.
func (i BatchItem) Failed() bool {
	return i.Error != ""
}

// BatchReport is the ordered outcome of a batch run.
type BatchReport struct {
	BatchID        string
	Results        []BatchItem
	TotalProcessed int
}

const (
	HealthStatusHealthy  = "healthy"
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// HealthReport describes the liveness of the service and its store.
type HealthReport struct {
	Status    string
	Database  string
	Timestamp time.Time
}
