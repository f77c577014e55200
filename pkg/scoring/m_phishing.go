package scoring

import (
	"math"
	"strings"
)

// PhishingInput describes a URL to check.
type PhishingInput struct {
	URL              string `json:"url"`
	HasSuspiciousTLD bool   `json:"hasSuspiciousTLD"`
	URLLength        int    `json:"urlLength"`
	HasHTTPS         bool   `json:"hasHTTPS"`
}

var phishingKeywords = []string{"login", "verify", "secure", "update", "confirm", "account", "bank"}

// PredictPhishingURL scores a URL on lure keywords, TLD, length, transport and
// obfuscation tricks.
func PredictPhishingURL(in PhishingInput) Result {
	var score float64
	url := strings.ToLower(in.URL)

	for _, kw := range phishingKeywords {
		if strings.Contains(url, kw) {
			score += 0.1
		}
	}
	if in.HasSuspiciousTLD {
		score += 0.25
	}
	if in.URLLength > 75 {
		score += 0.2
	}
	if !in.HasHTTPS {
		score += 0.2
	}
	// An "@" anywhere is enough on its own; "//" only counts past the scheme separator.
	// See DESIGN.md (phishing precedence) before tightening this.
	if strings.Contains(url, "@") || (strings.Contains(url, "//") && textLastIndex(url, "//") > 7) {
		score += 0.25
	}

	res := Result{
		Prediction: "SAFE URL",
		Confidence: math.Min(0.96, 0.5+score),
	}
	if score > 0.35 {
		res.Prediction = "PHISHING URL DETECTED"
	}
	switch {
	case score > 0.6:
		res.RiskLevel = RiskCritical
	case score > 0.35:
		res.RiskLevel = RiskHigh
	case score > 0.2:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
