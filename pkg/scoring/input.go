package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes why an input record was rejected before scoring.
type ValidationError struct {
	Module Module `json:"module,omitempty"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	if e.Module != "" {
		b.WriteString(string(e.Module) + " ")
	}
	b.WriteString("input")
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

type validator interface {
	Validate() error
}

// decodeInput strictly decodes raw into T: the record must be a JSON object, every
// required key must be present and non-null, and unknown keys are rejected.
func decodeInput[T any](module Module, raw json.RawMessage, required []string) (T, error) {
	var in T
	if len(bytes.TrimSpace(raw)) == 0 {
		return in, &ValidationError{Module: module, Reason: "input is empty"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return in, &ValidationError{Module: module, Reason: "input must be a JSON object"}
	}
	for _, f := range required {
		if v, ok := fields[f]; !ok || string(bytes.TrimSpace(v)) == "null" {
			return in, &ValidationError{Module: module, Field: f, Reason: "is required"}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return in, &ValidationError{Module: module, Field: typeErr.Field, Reason: fmt.Sprintf("must be of type %s", typeErr.Type)}
		}
		return in, &ValidationError{Module: module, Reason: err.Error()}
	}
	return in, nil
}

// checks collects the first validation failure of an input record.
type checks struct {
	err *ValidationError
}

func (c *checks) fail(field, reason string) {
	if c.err == nil {
		c.err = &ValidationError{Field: field, Reason: reason}
	}
}

func (c *checks) finite(field string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.fail(field, "must be a finite number")
		return false
	}
	return true
}

func (c *checks) nonNegative(field string, v float64) {
	if c.finite(field, v) && v < 0 {
		c.fail(field, "must not be negative")
	}
}

func (c *checks) between(field string, v, lo, hi float64) {
	if c.finite(field, v) && (v < lo || v > hi) {
		c.fail(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
}

func (c *checks) notBlank(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.fail(field, "must not be empty")
	}
}

func (c *checks) result() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// Validate checks the amount and, when present, the HH:MM time.
func (in UPIFraudInput) Validate() error {
	var c checks
	c.nonNegative("amount", in.Amount)
	if in.Time != "" && !validClock(in.Time) {
		c.fail("time", "must be HH:MM")
	}
	return c.result()
}

// validClock accepts H:MM or HH:MM with hours 0-23 and minutes 0-59.
func validClock(s string) bool {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 {
		return false
	}
	hour, okH := digits(h)
	minute, okM := digits(m)
	return okH && okM && hour <= 23 && minute <= 59
}

func digits(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, s != ""
}

func (in CreditCardInput) Validate() error {
	var c checks
	c.nonNegative("amount", in.Amount)
	if in.PreviousTransactions < 0 {
		c.fail("previousTransactions", "must not be negative")
	}
	return c.result()
}

func (in PhishingInput) Validate() error {
	var c checks
	c.notBlank("url", in.URL)
	if in.URLLength < 0 {
		c.fail("urlLength", "must not be negative")
	}
	return c.result()
}

func (in FakeNewsInput) Validate() error {
	var c checks
	c.notBlank("headline", in.Headline)
	return c.result()
}

func (in FakeReviewInput) Validate() error {
	var c checks
	c.notBlank("reviewText", in.ReviewText)
	if in.Rating < 1 || in.Rating > 5 {
		c.fail("rating", "must be between 1 and 5")
	}
	if in.ReviewerHistory < 0 {
		c.fail("reviewerHistory", "must not be negative")
	}
	return c.result()
}

func (in CyberbullyingInput) Validate() error {
	var c checks
	c.notBlank("message", in.Message)
	if in.SenderReputation < 0 {
		c.fail("senderReputation", "must not be negative")
	}
	return c.result()
}

func (in StressInput) Validate() error {
	var c checks
	c.between("sleepHours", in.SleepHours, 0, 24)
	c.between("workHours", in.WorkHours, 0, 24)
	c.nonNegative("exerciseMinutes", in.ExerciseMinutes)
	c.nonNegative("socialInteraction", in.SocialInteraction)
	return c.result()
}

func (in DiabetesInput) Validate() error {
	var c checks
	c.nonNegative("age", in.Age)
	c.nonNegative("bmi", in.BMI)
	c.between("physicalActivity", in.PhysicalActivity, 0, 7)
	c.nonNegative("bloodPressure", in.BloodPressure)
	return c.result()
}

func (in CropInput) Validate() error {
	var c checks
	c.nonNegative("nitrogen", in.Nitrogen)
	c.nonNegative("phosphorus", in.Phosphorus)
	c.nonNegative("potassium", in.Potassium)
	c.finite("temperature", in.Temperature)
	c.between("humidity", in.Humidity, 0, 100)
	c.nonNegative("rainfall", in.Rainfall)
	return c.result()
}

func (in AirQualityInput) Validate() error {
	var c checks
	c.nonNegative("pm25", in.PM25)
	c.nonNegative("pm10", in.PM10)
	c.nonNegative("no2", in.NO2)
	c.nonNegative("so2", in.SO2)
	c.nonNegative("co", in.CO)
	return c.result()
}

func (in PlantDiseaseInput) Validate() error {
	var c checks
	c.notBlank("symptoms", in.Symptoms)
	return c.result()
}
