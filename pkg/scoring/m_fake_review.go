package scoring

import (
	"math"
	"strings"
)

// FakeReviewInput is a product review.
type FakeReviewInput struct {
	ReviewText      string `json:"reviewText"`
	Rating          int    `json:"rating"`          // 1-5
	ReviewerHistory int    `json:"reviewerHistory"` // prior reviews by the author
}

var spamPhrases = []string{"best ever", "amazing product", "highly recommend", "must buy", "perfect", "love it"}

// PredictFakeReview scores a review on stock praise, short extreme ratings and thin
// reviewer history. Only low, medium and high are used.
func PredictFakeReview(in FakeReviewInput) Result {
	var score float64
	text := strings.ToLower(in.ReviewText)
	length := textLen(in.ReviewText)

	for _, p := range spamPhrases {
		if strings.Contains(text, p) {
			score += 0.1
		}
	}
	if in.Rating == 5 && length < 50 {
		score += 0.25
	}
	if in.Rating == 1 && length < 50 {
		score += 0.25
	}
	if in.ReviewerHistory < 3 {
		score += 0.2
	}
	if length < 20 {
		score += 0.15
	}

	res := Result{
		Prediction: "GENUINE REVIEW",
		Confidence: math.Min(0.85, 0.5+score),
	}
	if score > 0.35 {
		res.Prediction = "SUSPICIOUS REVIEW"
	}
	switch {
	case score > 0.5:
		res.RiskLevel = RiskHigh
	case score > 0.35:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
