package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifai/unifai/pkg/scoring"
)

// within asserts that a confidence lies between the module's base value and its cap.
func within(t *testing.T, res scoring.Result, lo, hi float64) {
	t.Helper()
	assert.GreaterOrEqual(t, res.Confidence, lo-1e-12, res.Prediction)
	assert.LessOrEqual(t, res.Confidence, hi, res.Prediction)
	assert.True(t, res.RiskLevel.Valid(), res.RiskLevel)
}

func TestConfidenceStaysInRange(t *testing.T) {
	amounts := []float64{0, 500, 10001, 50001, 100001}
	times := []string{"", "03:00", "12:00", "23:30"}
	for _, a := range amounts {
		for _, tm := range times {
			within(t, scoring.PredictUPIFraud(scoring.UPIFraudInput{Amount: a, Time: tm, SenderUPI: "random@x", Location: "unknown"}), 0.5, 0.95)
			within(t, scoring.PredictUPIFraud(scoring.UPIFraudInput{Amount: a, Time: tm}), 0.5, 0.95)
		}
		for _, intl := range []bool{true, false} {
			within(t, scoring.PredictCreditCardFraud(scoring.CreditCardInput{Amount: a, IsInternational: intl, MerchantType: "online"}), 0.55, 0.93)
		}
	}

	for _, url := range []string{"https://a.io", "http://login.bank.verify/secure@x//y", "http://x.y//z"} {
		for _, length := range []int{0, 80} {
			for _, tld := range []bool{true, false} {
				within(t, scoring.PredictPhishingURL(scoring.PhishingInput{URL: url, URLLength: length, HasSuspiciousTLD: tld}), 0.5, 0.96)
			}
		}
	}

	for _, h := range []string{"calm words", "SHOCKING SECRET SCANDAL EXPOSED!!!", "???"} {
		within(t, scoring.PredictFakeNews(scoring.FakeNewsInput{Headline: h, Content: "breaking exclusive unbelievable"}), 0.45, 0.88)
		within(t, scoring.PredictFakeNews(scoring.FakeNewsInput{Headline: h, Source: "Reuters"}), 0.45, 0.88)
	}

	for rating := 1; rating <= 5; rating++ {
		within(t, scoring.PredictFakeReview(scoring.FakeReviewInput{ReviewText: "perfect, must buy, love it", Rating: rating}), 0.5, 0.85)
	}

	for rep := 0; rep <= 10; rep++ {
		within(t, scoring.PredictCyberbullying(scoring.CyberbullyingInput{Message: "HATE YOU, UGLY STUPID LOSER", SenderReputation: rep}), 0.5, 0.9)
	}

	for _, sleep := range []float64{3, 6.5, 9} {
		for _, work := range []float64{6, 9, 13} {
			within(t, scoring.PredictStress(scoring.StressInput{SleepHours: sleep, WorkHours: work}), 0.55, 0.87)
		}
	}

	for _, age := range []float64{20, 50, 70} {
		for _, bmi := range []float64{20, 27, 35} {
			within(t, scoring.PredictDiabetesRisk(scoring.DiabetesInput{Age: age, BMI: bmi, FamilyHistory: true, BloodPressure: 150}), 0.5, 0.82)
		}
	}

	for _, n := range []float64{0, 70, 100, 130} {
		for _, temp := range []float64{-5, 18, 27, 33} {
			within(t, scoring.PredictCrop(scoring.CropInput{Nitrogen: n, Phosphorus: 50, Potassium: 50, Temperature: temp, Humidity: 65, Rainfall: 90}), 0.5, 0.92)
		}
	}
}

func TestPredictionsAreDeterministic(t *testing.T) {
	samples := map[scoring.Module]string{
		scoring.ModuleUPIFraud:        `{"amount":75000,"senderUPI":"random@x","receiverUPI":"b@x","time":"02:30","location":"Mumbai"}`,
		scoring.ModuleCreditCardFraud: `{"cardNumber":"4111","amount":60000,"merchantType":"online","isInternational":true,"previousTransactions":2}`,
		scoring.ModulePhishingURL:     `{"url":"http://secure-login.example@evil.io","hasSuspiciousTLD":true,"urlLength":90,"hasHTTPS":false}`,
		scoring.ModuleFakeNews:        `{"headline":"SHOCKING!!!","source":"","content":"secret"}`,
		scoring.ModuleFakeReview:      `{"reviewText":"perfect, love it","rating":5,"reviewerHistory":1}`,
		scoring.ModuleCyberbullying:   `{"message":"YOU ARE A STUPID LOSER","senderReputation":1}`,
		scoring.ModuleStress:          `{"sleepHours":4,"workHours":12,"exerciseMinutes":0,"socialInteraction":1}`,
		scoring.ModuleDiabetes:        `{"age":62,"bmi":31,"familyHistory":true,"physicalActivity":1,"bloodPressure":145}`,
		scoring.ModuleCrop:            `{"nitrogen":100,"phosphorus":50,"potassium":50,"temperature":25,"humidity":70,"rainfall":150}`,
		scoring.ModuleAirQuality:      `{"pm25":40,"pm10":60,"no2":20,"so2":5,"co":1}`,
		scoring.ModulePlantDisease:    `{"imageName":"leaf.jpg","symptoms":"Yellow spots and wilting"}`,
	}

	reg := scoring.DefaultRegistry()
	for _, m := range reg.Models() {
		t.Run(string(m.Key()), func(t *testing.T) {
			raw, ok := samples[m.Key()]
			require.True(t, ok, "no sample input for %s", m.Key())

			first, err := m.Predict(json.RawMessage(raw))
			require.NoError(t, err)
			for range 10 {
				got, err := m.Predict(json.RawMessage(raw))
				require.NoError(t, err)
				assert.Equal(t, first, got)
			}
		})
	}
	assert.Len(t, samples, len(reg.Models()))
}

// nonDecreasing asserts that each result is at least as confident and at least as risky
// as the one before. inverted flips the tier direction for modules where a higher
// score means a better outcome.
func nonDecreasing(t *testing.T, results []scoring.Result, inverted bool) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.GreaterOrEqual(t, cur.Confidence, prev.Confidence-1e-12, "step %d: %s -> %s", i, prev.Prediction, cur.Prediction)
		if inverted {
			assert.LessOrEqual(t, cur.RiskLevel.Compare(prev.RiskLevel), 0, "step %d: %s -> %s", i, prev.RiskLevel, cur.RiskLevel)
		} else {
			assert.GreaterOrEqual(t, cur.RiskLevel.Compare(prev.RiskLevel), 0, "step %d: %s -> %s", i, prev.RiskLevel, cur.RiskLevel)
		}
	}
}

// Each table walks inputs in increasing internal-score order: every step adds one
// more signal to the previous input. Plant disease has no accumulator; its first-match
// table is covered in environment_test.go.
func TestTierAndConfidenceRiseWithScore(t *testing.T) {
	t.Run("upi fraud", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.UPIFraudInput{
			{Amount: 100, Time: "12:00", SenderUPI: "a@x", Location: "Mumbai"},
			{Amount: 100, Time: "03:00", SenderUPI: "a@x", Location: "Mumbai"},
			{Amount: 100, Time: "03:00", SenderUPI: "random@x", Location: "Mumbai"},
			{Amount: 60000, Time: "03:00", SenderUPI: "random@x", Location: "Mumbai"},
			{Amount: 60000, Time: "03:00", SenderUPI: "random@x", Location: "Unknown"},
			{Amount: 150000, Time: "03:00", SenderUPI: "random@x", Location: "Unknown"},
		} {
			got = append(got, scoring.PredictUPIFraud(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	t.Run("credit card", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.CreditCardInput{
			{Amount: 100, MerchantType: "grocery", PreviousTransactions: 10},
			{Amount: 20000, MerchantType: "grocery", PreviousTransactions: 10},
			{Amount: 20000, MerchantType: "grocery", PreviousTransactions: 10, IsInternational: true},
			{Amount: 20000, MerchantType: "online", PreviousTransactions: 10, IsInternational: true},
			{Amount: 20000, MerchantType: "online", PreviousTransactions: 1, IsInternational: true},
			{Amount: 60000, MerchantType: "online", PreviousTransactions: 1, IsInternational: true},
		} {
			got = append(got, scoring.PredictCreditCardFraud(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	t.Run("phishing", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.PhishingInput{
			{URL: "https://example.com", URLLength: 20, HasHTTPS: true},
			{URL: "https://example.com/login", URLLength: 20, HasHTTPS: true},
			{URL: "https://example.com/login", URLLength: 20, HasHTTPS: true, HasSuspiciousTLD: true},
			{URL: "https://example.com/login", URLLength: 90, HasHTTPS: true, HasSuspiciousTLD: true},
			{URL: "https://example.com/login", URLLength: 90, HasSuspiciousTLD: true},
			{URL: "https://example.com/login@evil", URLLength: 90, HasSuspiciousTLD: true},
		} {
			got = append(got, scoring.PredictPhishingURL(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	t.Run("fake news", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.FakeNewsInput{
			{Headline: "Council meets today", Source: "Reuters"},
			{Headline: "Council meets today", Source: "Reuters", Content: "breaking"},
			{Headline: "Council meets today!!!", Source: "Reuters", Content: "breaking"},
			{Headline: "Council meets today!!!", Content: "breaking"},
			{Headline: "COUNCIL MEETS TODAY!!!", Content: "breaking"},
			{Headline: "COUNCIL MEETS TODAY!!!", Content: "breaking exclusive secret"},
		} {
			got = append(got, scoring.PredictFakeNews(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	t.Run("fake review", func(t *testing.T) {
		long := "The blender works as described and the lid seals well."
		var got []scoring.Result
		for _, in := range []scoring.FakeReviewInput{
			{ReviewText: long, Rating: 3, ReviewerHistory: 10},
			{ReviewText: long, Rating: 3, ReviewerHistory: 1},
			{ReviewText: long + " perfect", Rating: 3, ReviewerHistory: 1},
			{ReviewText: "perfect, love it, must buy now!!", Rating: 5, ReviewerHistory: 1},
			{ReviewText: "perfect, love it", Rating: 5, ReviewerHistory: 1},
		} {
			got = append(got, scoring.PredictFakeReview(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskHigh, got[len(got)-1].RiskLevel)
	})

	t.Run("cyberbullying", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.CyberbullyingInput{
			{Message: "have a nice day", SenderReputation: 8},
			{Message: "you are stupid", SenderReputation: 8},
			{Message: "you are stupid and ugly", SenderReputation: 8},
			{Message: "you are stupid and ugly", SenderReputation: 1},
			{Message: "YOU ARE STUPID AND UGLY", SenderReputation: 1},
			{Message: "YOU ARE A STUPID UGLY LOSER, I HATE YOU", SenderReputation: 1},
		} {
			got = append(got, scoring.PredictCyberbullying(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	t.Run("stress", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.StressInput{
			{SleepHours: 8, WorkHours: 7, ExerciseMinutes: 30, SocialInteraction: 5},
			{SleepHours: 6.5, WorkHours: 7, ExerciseMinutes: 30, SocialInteraction: 5},
			{SleepHours: 6.5, WorkHours: 9, ExerciseMinutes: 30, SocialInteraction: 5},
			{SleepHours: 5, WorkHours: 9, ExerciseMinutes: 30, SocialInteraction: 5},
			{SleepHours: 5, WorkHours: 11, ExerciseMinutes: 30, SocialInteraction: 5},
			{SleepHours: 5, WorkHours: 11, ExerciseMinutes: 0, SocialInteraction: 5},
			{SleepHours: 5, WorkHours: 11, ExerciseMinutes: 0, SocialInteraction: 0},
		} {
			got = append(got, scoring.PredictStress(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskHigh, got[len(got)-1].RiskLevel)
	})

	t.Run("diabetes", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.DiabetesInput{
			{Age: 30, BMI: 22, PhysicalActivity: 5, BloodPressure: 110},
			{Age: 50, BMI: 22, PhysicalActivity: 5, BloodPressure: 110},
			{Age: 50, BMI: 27, PhysicalActivity: 5, BloodPressure: 110},
			{Age: 50, BMI: 27, PhysicalActivity: 5, BloodPressure: 140},
			{Age: 50, BMI: 27, PhysicalActivity: 5, BloodPressure: 140, FamilyHistory: true},
			{Age: 65, BMI: 27, PhysicalActivity: 5, BloodPressure: 140, FamilyHistory: true},
			{Age: 65, BMI: 32, PhysicalActivity: 5, BloodPressure: 140, FamilyHistory: true},
			{Age: 65, BMI: 32, PhysicalActivity: 1, BloodPressure: 140, FamilyHistory: true},
		} {
			got = append(got, scoring.PredictDiabetesRisk(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskHigh, got[len(got)-1].RiskLevel)
	})

	t.Run("air quality", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.AirQualityInput{
			{},
			{PM25: 20},
			{PM25: 35},
			{PM25: 35, PM10: 50},
			{PM25: 35, PM10: 50, NO2: 100},
			{PM25: 35, PM10: 50, NO2: 100, SO2: 75},
			{PM25: 35, PM10: 50, NO2: 100, SO2: 75, CO: 10},
		} {
			got = append(got, scoring.PredictAirQuality(in))
		}
		nonDecreasing(t, got, false)
		assert.Equal(t, scoring.RiskLow, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskCritical, got[len(got)-1].RiskLevel)
	})

	// A better crop match is a higher score, which means more confidence and less risk.
	t.Run("crop", func(t *testing.T) {
		var got []scoring.Result
		for _, in := range []scoring.CropInput{
			{},
			{Nitrogen: 100},
			{Nitrogen: 100, Phosphorus: 50},
			{Nitrogen: 100, Phosphorus: 50, Potassium: 50},
			{Nitrogen: 100, Phosphorus: 50, Potassium: 50, Temperature: 25},
			{Nitrogen: 100, Phosphorus: 50, Potassium: 50, Temperature: 25, Humidity: 70},
			{Nitrogen: 100, Phosphorus: 50, Potassium: 50, Temperature: 25, Humidity: 70, Rainfall: 150},
		} {
			got = append(got, scoring.PredictCrop(in))
		}
		nonDecreasing(t, got, true)
		assert.Equal(t, scoring.RiskHigh, got[0].RiskLevel)
		assert.Equal(t, scoring.RiskLow, got[len(got)-1].RiskLevel)
	})
}
