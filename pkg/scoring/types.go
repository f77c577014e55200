// Package scoring implements the unifai prediction engine.
// Every module is a pure rule-based function that turns a typed input record into a
// prediction label, a confidence value and a risk tier. Nothing in this package performs
// I/O or keeps state between calls.
package scoring

import (
	"encoding/json"
	"fmt"
)

// Result is the output of a single prediction. Immutable once computed.
type Result struct {
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"` // 0.0-1.0, clamped per module
	RiskLevel  RiskLevel `json:"riskLevel"`
}

// RiskLevel is the ordinal risk tier of a prediction.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevels lists every tier in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Rank returns the position of the tier in the low < medium < high < critical ordering,
// or -1 for an unknown value.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// Compare returns -1, 0 or +1 depending on whether r is below, equal to or above o.
func (r RiskLevel) Compare(o RiskLevel) int {
	a, b := r.Rank(), o.Rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the four known tiers.
func (r RiskLevel) Valid() bool { return r.Rank() >= 0 }

func (r RiskLevel) String() string { return string(r) }

// ParseRiskLevel reconstructs a tier from its string form.
func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid risk level: %q", s)
	}
	return r, nil
}

// UnmarshalJSON rejects unknown tiers.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Module is the machine key of a prediction module, e.g. "fraud_upi".
type Module string

const (
	ModuleUPIFraud        Module = "fraud_upi"
	ModuleCreditCardFraud Module = "fraud_credit_card"
	ModulePhishingURL     Module = "fraud_phishing"
	ModuleFakeNews        Module = "content_fake_news"
	ModuleFakeReview      Module = "content_fake_review"
	ModuleCyberbullying   Module = "content_cyberbullying"
	ModuleStress          Module = "health_stress"
	ModuleDiabetes        Module = "health_diabetes"
	ModuleCrop            Module = "environment_crop"
	ModuleAirQuality      Module = "environment_air_quality"
	ModulePlantDisease    Module = "image_plant_disease"
)

// Category groups modules the way the platform presents them.
type Category string

const (
	CategoryFraud       Category = "fraud"
	CategoryContent     Category = "content"
	CategoryHealth      Category = "health"
	CategoryEnvironment Category = "environment"
	CategoryImage       Category = "image"
)
