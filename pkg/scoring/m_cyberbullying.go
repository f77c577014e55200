package scoring

import (
	"math"
	"strings"
)

// CyberbullyingInput is a message and its sender's reputation (1-10).
type CyberbullyingInput struct {
	Message          string `json:"message"`
	SenderReputation int    `json:"senderReputation"`
}

var harmfulWords = []string{"hate", "ugly", "stupid", "loser", "kill", "die", "worthless", "pathetic", "disgusting"}

// PredictCyberbullying scores a message on abusive vocabulary, shouting and sender
// reputation.
func PredictCyberbullying(in CyberbullyingInput) Result {
	var score float64
	text := strings.ToLower(in.Message)

	for _, w := range harmfulWords {
		if strings.Contains(text, w) {
			score += 0.15
		}
	}
	if isUpper(in.Message) && textLen(in.Message) > 10 {
		score += 0.15
	}
	if in.SenderReputation < 3 {
		score += 0.2
	}

	res := Result{
		Prediction: "SAFE CONTENT",
		Confidence: math.Min(0.9, 0.5+score),
	}
	if score > 0.3 {
		res.Prediction = "CYBERBULLYING DETECTED"
	}
	switch {
	case score > 0.5:
		res.RiskLevel = RiskCritical
	case score > 0.3:
		res.RiskLevel = RiskHigh
	case score > 0.15:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
