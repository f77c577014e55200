package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unifai/unifai/pkg/scoring"
)

func TestPredictStress(t *testing.T) {
	tests := []struct {
		name       string
		in         scoring.StressInput
		prediction string
		confidence float64
		risk       scoring.RiskLevel
	}{
		{
			name:       "balanced routine",
			in:         scoring.StressInput{SleepHours: 8, WorkHours: 7, ExerciseMinutes: 30, SocialInteraction: 3},
			prediction: "MODERATE/LOW STRESS",
			confidence: 0.55,
			risk:       scoring.RiskLow,
		},
		{
			name:       "short sleep and long days",
			in:         scoring.StressInput{SleepHours: 6.5, WorkHours: 9, ExerciseMinutes: 10, SocialInteraction: 3},
			prediction: "HIGH STRESS LEVEL",
			confidence: 0.8,
			risk:       scoring.RiskMedium,
		},
		{
			name:       "every factor at its worst",
			in:         scoring.StressInput{SleepHours: 4, WorkHours: 12, ExerciseMinutes: 0, SocialInteraction: 0},
			prediction: "HIGH STRESS LEVEL",
			confidence: 0.87,
			risk:       scoring.RiskHigh,
		},
		{
			name:       "tier boundaries take the milder weight",
			in:         scoring.StressInput{SleepHours: 6, WorkHours: 10, ExerciseMinutes: 15, SocialInteraction: 2},
			prediction: "MODERATE/LOW STRESS",
			confidence: 0.7,
			risk:       scoring.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.PredictStress(tt.in)
			assert.Equal(t, tt.prediction, got.Prediction)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.risk, got.RiskLevel)
		})
	}
}

func TestPredictDiabetesRisk(t *testing.T) {
	tests := []struct {
		name       string
		in         scoring.DiabetesInput
		prediction string
		confidence float64
		risk       scoring.RiskLevel
	}{
		{
			name:       "young and active",
			in:         scoring.DiabetesInput{Age: 28, BMI: 22, PhysicalActivity: 5, BloodPressure: 115},
			prediction: "LOW/NORMAL RISK",
			confidence: 0.5,
			risk:       scoring.RiskLow,
		},
		{
			name:       "middle aged and overweight",
			in:         scoring.DiabetesInput{Age: 50, BMI: 27, PhysicalActivity: 4, BloodPressure: 120},
			prediction: "LOW/NORMAL RISK",
			confidence: 0.675,
			risk:       scoring.RiskLow,
		},
		{
			name:       "family history and inactivity sit on the line",
			in:         scoring.DiabetesInput{Age: 30, BMI: 22, FamilyHistory: true, PhysicalActivity: 2, BloodPressure: 120},
			prediction: "LOW/NORMAL RISK",
			confidence: 0.7,
			risk:       scoring.RiskLow,
		},
		{
			name:       "family history on top of a high bmi",
			in:         scoring.DiabetesInput{Age: 40, BMI: 31, FamilyHistory: true, PhysicalActivity: 4, BloodPressure: 120},
			prediction: "ELEVATED DIABETES RISK",
			confidence: 0.8,
			risk:       scoring.RiskMedium,
		},
		{
			name:       "every factor present",
			in:         scoring.DiabetesInput{Age: 65, BMI: 32, FamilyHistory: true, PhysicalActivity: 1, BloodPressure: 140},
			prediction: "ELEVATED DIABETES RISK",
			confidence: 0.82,
			risk:       scoring.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.PredictDiabetesRisk(tt.in)
			assert.Equal(t, tt.prediction, got.Prediction)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.risk, got.RiskLevel)
		})
	}
}
