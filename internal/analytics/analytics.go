// Package analytics summarises recent predictions for the dashboard.
package analytics

import (
	"math"
	"time"

	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
)

// WindowSize is how many of the most recent predictions a summary covers.
const WindowSize = 500

// TrendDays is the length of the daily trend, today included.
const TrendDays = 7

// Bucket labels for the confidence histogram, lowest first.
var BucketLabels = []string{"0-25%", "25-50%", "50-75%", "75-100%"}

// Summary is the dashboard view of a set of predictions.
type Summary struct {
	Total         int                       `json:"total"`
	AvgConfidence float64                   `json:"avgConfidence"` // 0-1
	ByModule      map[scoring.Module]int    `json:"byModule"`
	ByRisk        map[scoring.RiskLevel]int `json:"byRisk"`
	Confidence    []BucketCount             `json:"confidence"`
	Trend         []DayCount                `json:"trend"`
	HighRisk      int                       `json:"highRisk"`
}

// BucketCount is one confidence histogram bar.
type BucketCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// DayCount is one day of the trend. AvgConfidence is a whole percentage.
type DayCount struct {
	Date          string `json:"date"` // YYYY-MM-DD, UTC
	Predictions   int    `json:"predictions"`
	AvgConfidence int    `json:"avgConfidence"`
}

// Summarize aggregates records. now anchors the trend window.
func Summarize(records []store.Record, now time.Time) Summary {
	s := Summary{
		Total:    len(records),
		ByModule: make(map[scoring.Module]int),
		ByRisk:   make(map[scoring.RiskLevel]int),
	}

	buckets := make([]int, len(BucketLabels))
	var sum float64
	for _, r := range records {
		sum += r.Result.Confidence
		s.ByModule[r.Module]++
		s.ByRisk[r.Result.RiskLevel]++
		buckets[bucketOf(r.Result.Confidence)]++
		if r.Result.RiskLevel.Compare(scoring.RiskHigh) >= 0 {
			s.HighRisk++
		}
	}
	if len(records) > 0 {
		s.AvgConfidence = sum / float64(len(records))
	}
	for i, label := range BucketLabels {
		s.Confidence = append(s.Confidence, BucketCount{Range: label, Count: buckets[i]})
	}
	s.Trend = trend(records, now)
	return s
}

func bucketOf(confidence float64) int {
	pct := confidence * 100
	switch {
	case pct <= 25:
		return 0
	case pct <= 50:
		return 1
	case pct <= 75:
		return 2
	default:
		return 3
	}
}

func trend(records []store.Record, now time.Time) []DayCount {
	today := now.UTC()
	days := make([]DayCount, TrendDays)
	index := make(map[string]int, TrendDays)
	sums := make([]float64, TrendDays)
	for i := range TrendDays {
		date := today.AddDate(0, 0, i-(TrendDays-1)).Format(time.DateOnly)
		days[i].Date = date
		index[date] = i
	}
	for _, r := range records {
		i, ok := index[r.CreatedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		days[i].Predictions++
		sums[i] += r.Result.Confidence * 100
	}
	for i := range days {
		if days[i].Predictions > 0 {
			days[i].AvgConfidence = int(math.Floor(sums[i]/float64(days[i].Predictions) + 0.5))
		}
	}
	return days
}
