package surface

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/unifai/unifai/pkg/scoring"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

const barWidth = 20

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// riskColor follows the usual traffic-light palette, ANSI 256 codes.
func riskColor(r scoring.RiskLevel) lipgloss.Color {
	switch r {
	case scoring.RiskCritical:
		return lipgloss.Color("196")
	case scoring.RiskHigh:
		return lipgloss.Color("208")
	case scoring.RiskMedium:
		return lipgloss.Color("220")
	default:
		return lipgloss.Color("42")
	}
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	lr := lipgloss.NewRenderer(w)
	if noColor() {
		lr.SetColorProfile(termenv.Ascii)
	} else {
		lr.SetColorProfile(termenv.ANSI256)
	}

	header := lr.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim := lr.NewStyle().Foreground(lipgloss.Color("241"))
	tier := lr.NewStyle().Bold(true).Foreground(riskColor(report.Result.RiskLevel))

	title := report.ModuleName
	if title == "" {
		title = string(report.Module)
	}
	fmt.Fprintf(w, "%s %s\n\n", header.Render(title), dim.Render("("+string(report.Module)+")"))
	fmt.Fprintf(w, "  %s\n\n", tier.Render(report.Result.Prediction))

	fmt.Fprintf(w, "  Confidence  %s %s\n",
		tier.Render(confidenceBar(report.Result.Confidence)), FormatPercent(report.Result.Confidence))
	fmt.Fprintf(w, "  Risk        %s\n", tier.Render(riskLabel(report.Result.RiskLevel)))

	if report.ID != "" {
		fmt.Fprintf(w, "\n  %s\n", dim.Render("id "+report.ID))
	}
	fmt.Fprintln(w)
	return nil
}

// confidenceBar draws a fixed-width bar filled in proportion to confidence.
func confidenceBar(confidence float64) string {
	filled := int(math.Round(math.Max(0, math.Min(1, confidence)) * barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
