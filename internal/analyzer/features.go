package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

// ExtractFeatures computes the lexical feature set of rawURL. It treats the
// input as plain text, so any string, including the empty one, is accepted.
func ExtractFeatures(rawURL string, keywords []string) entity.FeatureSet {
	length := utf8.RuneCountInString(rawURL)

	return entity.FeatureSet{
		URLLength:           length,
		DotCount:            strings.Count(rawURL, "."),
		HyphenCount:         strings.Count(rawURL, "-"),
		SlashCount:          strings.Count(rawURL, "/"),
		SuspiciousWordCount: countKeywords(rawURL, keywords),
		EntropyProxy:        entropyProxy(rawURL, length),
	}
}

// countKeywords counts every case-insensitive occurrence of every keyword.
func countKeywords(s string, keywords []string) int {
	lower := strings.ToLower(s)

	n := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		n += strings.Count(lower, kw)
	}

	return n
}

// entropyProxy is the ratio of distinct characters to total characters.
func entropyProxy(s string, length int) float64 {
	if length == 0 {
		return 0
	}

	seen := make(map[rune]struct{}, length)
	for _, r := range s {
		seen[r] = struct{}{}
	}

	return float64(len(seen)) / float64(length)
}
