package scoring

import "math"

// StressInput is a day's lifestyle summary.
type StressInput struct {
	SleepHours        float64 `json:"sleepHours"`
	WorkHours         float64 `json:"workHours"`
	ExerciseMinutes   float64 `json:"exerciseMinutes"`
	SocialInteraction float64 `json:"socialInteraction"` // hours
}

// PredictStress estimates stress from sleep, work, exercise and social time.
// Sleep and work each contribute one of two mutually exclusive weights.
func PredictStress(in StressInput) Result {
	var score float64

	if in.SleepHours < 6 {
		score += 0.3
	} else if in.SleepHours < 7 {
		score += 0.15
	}
	if in.WorkHours > 10 {
		score += 0.3
	} else if in.WorkHours > 8 {
		score += 0.15
	}
	if in.ExerciseMinutes < 15 {
		score += 0.2
	}
	if in.SocialInteraction < 2 {
		score += 0.2
	}

	res := Result{
		Prediction: "MODERATE/LOW STRESS",
		Confidence: math.Min(0.87, 0.55+score*0.5),
	}
	if score > 0.4 {
		res.Prediction = "HIGH STRESS LEVEL"
	}
	switch {
	case score > 0.6:
		res.RiskLevel = RiskHigh
	case score > 0.4:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
