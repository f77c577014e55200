package surface_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifai/unifai/pkg/scoring"
	"github.com/unifai/unifai/pkg/surface"
)

func sampleReport() *surface.Report {
	return &surface.Report{
		ID:         "5f0c1f8e-5b3a-4b8e-9f7e-0d6c2f1a9b11",
		Module:     scoring.ModuleUPIFraud,
		ModuleName: "UPI fraud detection",
		Result: scoring.Result{
			Prediction: "FRAUDULENT TRANSACTION",
			Confidence: 0.95,
			RiskLevel:  scoring.RiskCritical,
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).Render(&buf, sampleReport()))

	output := buf.String()
	assert.Contains(t, output, "UPI fraud detection")
	assert.Contains(t, output, "(fraud_upi)")
	assert.Contains(t, output, "FRAUDULENT TRANSACTION")
	assert.Contains(t, output, "95.0%")
	assert.Contains(t, output, "CRITICAL")
	assert.Contains(t, output, "id 5f0c1f8e")
	assert.NotContains(t, output, "\033[")
}

func TestTerminalRenderer_FallsBackToModuleKey(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	report := sampleReport()
	report.ModuleName = ""
	report.ID = ""

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).Render(&buf, report))
	assert.True(t, strings.HasPrefix(buf.String(), "fraud_upi"), buf.String())
	assert.NotContains(t, buf.String(), "id ")
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "\033[", "expected ANSI escape codes when NO_COLOR is not set")
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&surface.MarkdownRenderer{}).Render(&buf, sampleReport()))

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, "## UPI fraud detection: FRAUDULENT TRANSACTION\n"))
	assert.Contains(t, output, "| Confidence | 95.0% |")
	assert.Contains(t, output, "| Risk | :red_circle: CRITICAL |")
	assert.Contains(t, output, "| Scored at | 2026-03-01 09:30:00 UTC |")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&surface.JSONRenderer{}).Render(&buf, sampleReport()))

	var got surface.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
	assert.Contains(t, buf.String(), `"riskLevel": "critical"`)
}

func TestForFormat(t *testing.T) {
	for format, want := range map[string]surface.Renderer{
		"":         &surface.TerminalRenderer{},
		"text":     &surface.TerminalRenderer{},
		"JSON":     &surface.JSONRenderer{},
		"markdown": &surface.MarkdownRenderer{},
	} {
		got, err := surface.ForFormat(format)
		require.NoError(t, err, format)
		assert.IsType(t, want, got, format)
	}

	_, err := surface.ForFormat("yaml")
	assert.Error(t, err)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "95.0%", surface.FormatPercent(0.95))
	assert.Equal(t, "67.5%", surface.FormatPercent(0.675))
	assert.Equal(t, "0.0%", surface.FormatPercent(0))
	assert.Equal(t, "100.0%", surface.FormatPercent(1))
}
