package scoring

import (
	"math"
	"strings"
)

// CreditCardInput is a single card transaction. CardNumber is carried for the record
// only and never influences the score.
type CreditCardInput struct {
	CardNumber           string  `json:"cardNumber"`
	Amount               float64 `json:"amount"`
	MerchantType         string  `json:"merchantType"`
	IsInternational      bool    `json:"isInternational"`
	PreviousTransactions int     `json:"previousTransactions"`
}

// PredictCreditCardFraud scores card transactions on amount, geography, merchant and
// account history.
func PredictCreditCardFraud(in CreditCardInput) Result {
	var score float64

	if in.Amount > 10000 {
		score += 0.25
	}
	if in.Amount > 50000 {
		score += 0.25
	}
	if in.IsInternational {
		score += 0.2
	}
	merchant := strings.ToLower(in.MerchantType)
	if strings.Contains(merchant, "unknown") || strings.Contains(merchant, "online") {
		score += 0.15
	}
	if in.PreviousTransactions < 5 {
		score += 0.15
	}

	res := Result{
		Prediction: "NORMAL TRANSACTION",
		Confidence: math.Min(0.93, 0.55+score),
	}
	if score > 0.45 {
		res.Prediction = "HIGH FRAUD RISK"
	}
	switch {
	case score > 0.6:
		res.RiskLevel = RiskCritical
	case score > 0.45:
		res.RiskLevel = RiskHigh
	case score > 0.25:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
