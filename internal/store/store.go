// Package store persists scored predictions so they can be listed, explained and
// summarised later.
package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/unifai/unifai/pkg/scoring"
)

// ErrNotFound is returned when a prediction ID does not exist.
var ErrNotFound = errors.New("prediction not found")

// DefaultLimit and MaxLimit bound List.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Record is one stored prediction.
type Record struct {
	ID          string          `json:"id"`
	Module      scoring.Module  `json:"module"`
	Input       json.RawMessage `json:"input"`
	Result      scoring.Result  `json:"result"`
	Explanation string          `json:"explanation,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Filter narrows List. A zero Module matches every module.
type Filter struct {
	Module scoring.Module
	Limit  int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}
