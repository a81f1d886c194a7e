// Package analyzer implements the lexical phishing heuristic: feature
// extraction, risk scoring and classification. Everything in this package is
// pure and deterministic; nothing here performs I/O.
package analyzer

import "github.com/vadimbarashkov/phishing-detector/internal/entity"

const statusChecked = "checked"

// Analyzer composes extraction, scoring and classification into one step.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with the given configuration.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze classifies rawURL. It never fails.
func (a *Analyzer) Analyze(rawURL string) entity.AnalysisResult {
	features := ExtractFeatures(rawURL, a.cfg.Keywords)
	score := Score(a.cfg, features)
	c := Classify(a.cfg, score)

	return entity.AnalysisResult{
		Prediction:        c.Prediction,
		RiskLevel:         c.RiskLevel,
		Probability:       roundTo(score, 4),
		Confidence:        c.Confidence,
		FeaturesExtracted: entity.FeatureChannels,
		FeatureSummary: entity.FeatureSummary{
			URLLength:          features.URLLength,
			SuspiciousKeywords: features.SuspiciousWordCount,
			EntropyScore:       roundTo(features.EntropyProxy, 2),
		},
		ThreatIntelligence: PlaceholderThreatIntelligence(),
		Score:              score,
		Features:           features,
	}
}

// PlaceholderThreatIntelligence returns the static reputation annotation.
// No external service is contacted.
func PlaceholderThreatIntelligence() entity.ThreatIntelligence {
	return entity.ThreatIntelligence{
		VirusTotal: entity.VirusTotalReport{
			Status:    statusChecked,
			Malicious: 0,
		},
		GoogleSafeBrowsing: entity.SafeBrowsingReport{
			Status:  statusChecked,
			Threats: []string{},
		},
	}
}
