package analyzer

import "github.com/vadimbarashkov/phishing-detector/internal/entity"

// Classification is the label set assigned to a risk score.
type Classification struct {
	Prediction entity.Prediction
	RiskLevel  entity.RiskLevel
	Confidence entity.Confidence
}

// Classify maps a risk score to a prediction, a risk band and a confidence label.
// Confidence never drops to LOW and the CRITICAL band is never assigned.
func Classify(cfg Config, score float64) Classification {
	var c Classification

	switch {
	case score >= cfg.PhishingThreshold:
		c.Prediction, c.RiskLevel = entity.PredictionPhishing, entity.RiskHigh
	case score >= cfg.SuspiciousThreshold:
		c.Prediction, c.RiskLevel = entity.PredictionSuspicious, entity.RiskMedium
	default:
		c.Prediction, c.RiskLevel = entity.PredictionLegitimate, entity.RiskLow
	}

	c.Confidence = entity.ConfidenceMedium
	if score > cfg.ConfidenceExtremeHigh || score < cfg.ConfidenceExtremeLow {
		c.Confidence = entity.ConfidenceHigh
	}

	return c
}
