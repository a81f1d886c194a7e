package entity

// FeatureChannels is the number of lexical measurements in a FeatureSet.
const FeatureChannels = 6

// FeatureSet is the collection of lexical measurements derived from a URL string.
type FeatureSet struct {
	URLLength           int
	DotCount            int
	HyphenCount         int
	SlashCount          int
	SuspiciousWordCount int
	EntropyProxy        float64
}

// FeatureSummary is the persisted subset of a FeatureSet.
type FeatureSummary struct {
	URLLength          int     `json:"url_length"`
	SuspiciousKeywords int     `json:"suspicious_keywords"`
	EntropyScore       float64 `json:"entropy_score"`
}

// VirusTotalReport is the placeholder VirusTotal lookup result.
type VirusTotalReport struct {
	Status    string `json:"status"`
	Malicious int    `json:"malicious"`
}

// SafeBrowsingReport is the placeholder Google Safe Browsing lookup result.
type SafeBrowsingReport struct {
	Status  string   `json:"status"`
	Threats []string `json:"threats"`
}

// ThreatIntelligence annotates an analysis with external reputation lookups.
// It is informational only and never influences the score.
type ThreatIntelligence struct {
	VirusTotal         VirusTotalReport   `json:"virustotal"`
	GoogleSafeBrowsing SafeBrowsingReport `json:"google_safe_browsing"`
}

// AnalysisResult is the output of the analysis pipeline for a single URL.
type AnalysisResult struct {
	Prediction         Prediction         `json:"prediction"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	Probability        float64            `json:"probability"`
	Confidence         Confidence         `json:"confidence"`
	FeaturesExtracted  int                `json:"features_extracted"`
	FeatureSummary     FeatureSummary     `json:"feature_summary"`
	ThreatIntelligence ThreatIntelligence `json:"threat_intelligence"`

	// Score is the unrounded risk score; Probability is what gets stored.
	Score float64 `json:"-"`
	// Features is kept for callers that want the full measurement set.
	Features FeatureSet `json:"-"`
}
