package analyzer

import (
	"errors"
	"fmt"
)

// Config holds the tunable weights and thresholds of the heuristic.
type Config struct {
	LengthWeight  float64 `yaml:"length_weight"`
	LengthScale   float64 `yaml:"length_scale"`
	LengthCap     float64 `yaml:"length_cap"`
	KeywordWeight float64 `yaml:"keyword_weight"`
	KeywordStep   float64 `yaml:"keyword_step"`
	KeywordCap    float64 `yaml:"keyword_cap"`
	EntropyWeight float64 `yaml:"entropy_weight"`

	PhishingThreshold     float64 `yaml:"phishing_threshold"`
	SuspiciousThreshold   float64 `yaml:"suspicious_threshold"`
	ConfidenceExtremeLow  float64 `yaml:"confidence_extreme_low"`
	ConfidenceExtremeHigh float64 `yaml:"confidence_extreme_high"`

	Keywords []string `yaml:"keywords"`
}

// DefaultConfig returns the stock heuristic.
func DefaultConfig() Config {
	return Config{
		LengthWeight:  1,
		LengthScale:   100,
		LengthCap:     0.3,
		KeywordWeight: 1,
		KeywordStep:   0.2,
		KeywordCap:    0.4,
		EntropyWeight: 0.3,

		PhishingThreshold:     0.85,
		SuspiciousThreshold:   0.60,
		ConfidenceExtremeLow:  0.1,
		ConfidenceExtremeHigh: 0.9,

		Keywords: []string{"login", "verify", "account", "bank", "paypal", "secure"},
	}
}

// Validate checks that the configuration keeps the score bounded and monotonic.
func (c Config) Validate() error {
	const op = "analyzer.Config.Validate"

	var errs []error

	nonNegative := map[string]float64{
		"length_weight":  c.LengthWeight,
		"length_cap":     c.LengthCap,
		"keyword_weight": c.KeywordWeight,
		"keyword_step":   c.KeywordStep,
		"keyword_cap":    c.KeywordCap,
		"entropy_weight": c.EntropyWeight,
	}
	for _, name := range []string{"length_weight", "length_cap", "keyword_weight", "keyword_step", "keyword_cap", "entropy_weight"} {
		if nonNegative[name] < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	if c.LengthScale <= 0 {
		errs = append(errs, errors.New("length_scale must be positive"))
	}

	unit := []struct {
		name string
		v    float64
	}{
		{"phishing_threshold", c.PhishingThreshold},
		{"suspicious_threshold", c.SuspiciousThreshold},
		{"confidence_extreme_low", c.ConfidenceExtremeLow},
		{"confidence_extreme_high", c.ConfidenceExtremeHigh},
	}
	for _, u := range unit {
		if u.v < 0 || u.v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1]", u.name))
		}
	}

	if c.SuspiciousThreshold > c.PhishingThreshold {
		errs = append(errs, errors.New("suspicious_threshold must not exceed phishing_threshold"))
	}
	if c.ConfidenceExtremeLow > c.ConfidenceExtremeHigh {
		errs = append(errs, errors.New("confidence_extreme_low must not exceed confidence_extreme_high"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
