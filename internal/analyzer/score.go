package analyzer

import (
	"math"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

// Score maps a feature set to a risk score in [0, 1].
func Score(cfg Config, f entity.FeatureSet) float64 {
	length := math.Min(float64(f.URLLength)/cfg.LengthScale, cfg.LengthCap)
	keywords := math.Min(float64(f.SuspiciousWordCount)*cfg.KeywordStep, cfg.KeywordCap)

	score := cfg.LengthWeight*length +
		cfg.KeywordWeight*keywords +
		cfg.EntropyWeight*f.EntropyProxy

	return clamp(score, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
