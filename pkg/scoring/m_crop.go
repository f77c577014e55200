package scoring

import (
	"math"
	"strings"
)

// CropInput is a soil and climate reading.
type CropInput struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	Rainfall    float64 `json:"rainfall"`    // mm
}

// span is an inclusive numeric range.
type span struct{ lo, hi float64 }

func (s span) contains(v float64) bool { return v >= s.lo && v <= s.hi }

// cropProfile is the growing envelope of one crop.
type cropProfile struct {
	Name                            string
	Nitrogen, Phosphorus, Potassium span
	Temperature, Humidity, Rain     span
}

// cropTable is scanned in order; on a tie the earlier crop wins.
var cropTable = []cropProfile{
	{Name: "Rice", Nitrogen: span{80, 120}, Phosphorus: span{40, 60}, Potassium: span{40, 60}, Temperature: span{20, 30}, Humidity: span{60, 80}, Rain: span{100, 200}},
	{Name: "Wheat", Nitrogen: span{60, 100}, Phosphorus: span{35, 55}, Potassium: span{35, 55}, Temperature: span{15, 25}, Humidity: span{50, 70}, Rain: span{50, 100}},
	{Name: "Cotton", Nitrogen: span{100, 140}, Phosphorus: span{45, 65}, Potassium: span{45, 65}, Temperature: span{25, 35}, Humidity: span{50, 70}, Rain: span{50, 100}},
	{Name: "Sugarcane", Nitrogen: span{100, 150}, Phosphorus: span{50, 70}, Potassium: span{50, 70}, Temperature: span{25, 35}, Humidity: span{60, 80}, Rain: span{100, 200}},
	{Name: "Maize", Nitrogen: span{80, 120}, Phosphorus: span{40, 60}, Potassium: span{35, 55}, Temperature: span{20, 30}, Humidity: span{50, 70}, Rain: span{60, 120}},
}

// CropNames returns the crops the recommender knows, in table order.
func CropNames() []string {
	names := make([]string, len(cropTable))
	for i, c := range cropTable {
		names[i] = c.Name
	}
	return names
}

// match returns how well the reading fits the crop, from 0 to 1.
func (c cropProfile) match(in CropInput) float64 {
	var score float64
	if c.Nitrogen.contains(in.Nitrogen) {
		score += 0.2
	}
	if c.Phosphorus.contains(in.Phosphorus) {
		score += 0.2
	}
	if c.Potassium.contains(in.Potassium) {
		score += 0.15
	}
	if c.Temperature.contains(in.Temperature) {
		score += 0.2
	}
	if c.Humidity.contains(in.Humidity) {
		score += 0.15
	}
	if c.Rain.contains(in.Rainfall) {
		score += 0.1
	}
	return score
}

// PredictCrop recommends the crop whose envelope best matches the reading. The risk
// tier is inverted: a strong match is low risk.
func PredictCrop(in CropInput) Result {
	best := cropTable[0]
	var bestScore float64
	for _, c := range cropTable {
		if s := c.match(in); s > bestScore {
			best, bestScore = c, s
		}
	}

	res := Result{
		Prediction: "RECOMMENDED: " + strings.ToUpper(best.Name),
		Confidence: math.Min(0.92, 0.5+bestScore),
	}
	switch {
	case bestScore > 0.7:
		res.RiskLevel = RiskLow
	case bestScore > 0.5:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskHigh
	}
	return res
}
