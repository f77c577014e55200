package scoring

import (
	"math"
	"strings"
)

// FakeNewsInput is an article to assess.
type FakeNewsInput struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Content  string `json:"content"`
}

var sensationalWords = []string{"shocking", "unbelievable", "breaking", "exclusive", "secret", "exposed", "scandal"}

// PredictFakeNews scores an article on sensational wording, shouting headlines and
// source credibility.
func PredictFakeNews(in FakeNewsInput) Result {
	var score float64
	text := strings.ToLower(in.Headline + " " + in.Content)

	for _, w := range sensationalWords {
		if strings.Contains(text, w) {
			score += 0.12
		}
	}
	if isUpper(in.Headline) {
		score += 0.2
	}
	if strings.Contains(in.Headline, "!!!") || strings.Contains(in.Headline, "???") {
		score += 0.15
	}
	if in.Source == "" || strings.Contains(strings.ToLower(in.Source), "unknown") {
		score += 0.25
	}

	res := Result{
		Prediction: "APPEARS CREDIBLE",
		Confidence: math.Min(0.88, 0.45+score),
	}
	if score > 0.4 {
		res.Prediction = "LIKELY FAKE NEWS"
	}
	switch {
	case score > 0.6:
		res.RiskLevel = RiskCritical
	case score > 0.4:
		res.RiskLevel = RiskHigh
	case score > 0.25:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
