package scoring

import "math"

// DiabetesInput holds the health metrics used for diabetes screening.
type DiabetesInput struct {
	Age              float64 `json:"age"`
	BMI              float64 `json:"bmi"`
	FamilyHistory    bool    `json:"familyHistory"`
	PhysicalActivity float64 `json:"physicalActivity"` // active days per week
	BloodPressure    float64 `json:"bloodPressure"`    // systolic, mmHg
}

// PredictDiabetesRisk screens for diabetes risk factors. Only low, medium and high are
// used.
func PredictDiabetesRisk(in DiabetesInput) Result {
	var score float64

	if in.Age > 45 {
		score += 0.15
	}
	if in.Age > 60 {
		score += 0.1
	}
	if in.BMI > 25 {
		score += 0.2
	}
	if in.BMI > 30 {
		score += 0.15
	}
	if in.FamilyHistory {
		score += 0.25
	}
	if in.PhysicalActivity < 3 {
		score += 0.15
	}
	if in.BloodPressure > 130 {
		score += 0.15
	}

	res := Result{
		Prediction: "LOW/NORMAL RISK",
		Confidence: math.Min(0.82, 0.5+score*0.5),
	}
	if score > 0.4 {
		res.Prediction = "ELEVATED DIABETES RISK"
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
