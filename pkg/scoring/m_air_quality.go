package scoring

import "math"

// AirQualityInput holds pollutant concentrations.
type AirQualityInput struct {
	PM25 float64 `json:"pm25"` // µg/m³
	PM10 float64 `json:"pm10"` // µg/m³
	NO2  float64 `json:"no2"`  // ppb
	SO2  float64 `json:"so2"`  // ppb
	CO   float64 `json:"co"`   // ppm
}

// airQualityConfidence is reported for every air quality prediction.
const airQualityConfidence = 0.88

// pollutant weights each concentration against its reference level, saturating at 1.
func pollutant(v, reference, weight float64) float64 {
	return math.Min(v/reference, 1) * weight
}

// PredictAirQuality folds the five pollutants into an AQI-like index and names its
// category.
func PredictAirQuality(in AirQualityInput) Result {
	var aqi float64
	aqi += pollutant(in.PM25, 35, 0.35)
	aqi += pollutant(in.PM10, 50, 0.25)
	aqi += pollutant(in.NO2, 100, 0.15)
	aqi += pollutant(in.SO2, 75, 0.15)
	aqi += pollutant(in.CO, 10, 0.1)

	category := "GOOD"
	switch {
	case aqi > 0.8:
		category = "HAZARDOUS"
	case aqi > 0.6:
		category = "VERY UNHEALTHY"
	case aqi > 0.4:
		category = "UNHEALTHY"
	case aqi > 0.2:
		category = "MODERATE"
	}

	res := Result{
		Prediction: "AIR QUALITY: " + category,
		Confidence: airQualityConfidence,
	}
	switch {
	case aqi > 0.6:
		res.RiskLevel = RiskCritical
	case aqi > 0.4:
		res.RiskLevel = RiskHigh
	case aqi > 0.2:
		res.RiskLevel = RiskMedium
	default:
		res.RiskLevel = RiskLow
	}
	return res
}
