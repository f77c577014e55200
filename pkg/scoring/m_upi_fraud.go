package scoring

import (
	"math"
	"strings"
)

// UPIFraudInput is a single UPI payment.
type UPIFraudInput struct {
	Amount      float64 `json:"amount"`
	SenderUPI   string  `json:"senderUPI"`
	ReceiverUPI string  `json:"receiverUPI"`
	Time        string  `json:"time"` // "HH:MM", optional
	Location    string  `json:"location"`
}

// PredictUPIFraud flags large, night-time or oddly addressed UPI payments.
func PredictUPIFraud(in UPIFraudInput) Result {
	var score float64

	if in.Amount > 50000 {
		score += 0.3
	}
	if in.Amount > 100000 {
		score += 0.2
	}
	if in.Time != "" {
		hourText, _, _ := strings.Cut(in.Time, ":")
		if hour, ok := leadingInt(hourText); ok && (hour < 6 || hour > 22) {
			score += 0.2
		}
	}
	if strings.Contains(in.SenderUPI, "random") || strings.Contains(in.ReceiverUPI, "random") {
		score += 0.15
	}
	if strings.Contains(strings.ToLower(in.Location), "unknown") {
		score += 0.15
	}

	res := Result{
		Prediction: "LEGITIMATE TRANSACTION",
		Confidence: math.Min(0.95, 0.5+score),
	}
	if score > 0.4 {
		res.Prediction = "FRAUDULENT TRANSACTION"
	}
	switch {
	case score > 0.6:
		res.RiskLevel = RiskCritical
	case score > 0.4:
		res.RiskLevel = RiskHigh
	case score > 0.2:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
