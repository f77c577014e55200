// Package surface defines output rendering interfaces for unifai predictions.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifai/unifai/pkg/scoring"
)

// Report is a scored prediction as presented to a reader.
type Report struct {
	ID         string         `json:"id,omitempty"`
	Module     scoring.Module `json:"module"`
	ModuleName string         `json:"moduleName,omitempty"`
	Result     scoring.Result `json:"result"`
	CreatedAt  time.Time      `json:"createdAt,omitzero"`
}

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// ForFormat returns the renderer for an --output value.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json or markdown)", format)
	}
}

var hundred = decimal.NewFromInt(100)

// FormatPercent renders a 0-1 confidence as a percentage with one decimal, e.g. "95.0%".
func FormatPercent(confidence float64) string {
	return decimal.NewFromFloat(confidence).Mul(hundred).StringFixed(1) + "%"
}
