package scoring

import "strings"

// PlantDiseaseInput describes a plant photo. Only the symptom text is scored; the image
// name is kept for the record.
type PlantDiseaseInput struct {
	ImageName string `json:"imageName"`
	Symptoms  string `json:"symptoms"`
}

type diseaseRule struct {
	name       string
	keywords   []string
	confidence float64
}

// diseaseRules are tried in order and the first match wins.
var diseaseRules = []diseaseRule{
	{name: "Leaf Blight", keywords: []string{"yellow", "spots"}, confidence: 0.82},
	{name: "Powdery Mildew", keywords: []string{"white", "powder"}, confidence: 0.85},
	{name: "Root Rot", keywords: []string{"wilt", "brown root"}, confidence: 0.78},
	{name: "Mosaic Virus", keywords: []string{"mosaic", "pattern"}, confidence: 0.8},
}

const healthyConfidence = 0.75

// PredictPlantDisease maps symptom keywords to a disease.
func PredictPlantDisease(in PlantDiseaseInput) Result {
	symptoms := strings.ToLower(in.Symptoms)
	for _, rule := range diseaseRules {
		for _, kw := range rule.keywords {
			if strings.Contains(symptoms, kw) {
				return Result{
					Prediction: "DETECTED: " + strings.ToUpper(rule.name),
					Confidence: rule.confidence,
					RiskLevel:  RiskHigh,
				}
			}
		}
	}
	return Result{
		Prediction: "PLANT IS HEALTHY",
		Confidence: healthyConfidence,
		RiskLevel:  RiskLow,
	}
}
