package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/unifai/unifai/pkg/scoring"
)

// MarkdownRenderer renders a Report as a Markdown summary suitable for issues and chat.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, BuildMarkdownSummary(report))
	return err
}

// BuildMarkdownSummary formats a single prediction as a heading plus a field table.
func BuildMarkdownSummary(report *Report) string {
	var sb strings.Builder

	title := report.ModuleName
	if title == "" {
		title = string(report.Module)
	}
	fmt.Fprintf(&sb, "## %s: %s\n\n", title, report.Result.Prediction)

	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&sb, "| Module | `%s` |\n", report.Module)
	fmt.Fprintf(&sb, "| Confidence | %s |\n", FormatPercent(report.Result.Confidence))
	fmt.Fprintf(&sb, "| Risk | %s %s |\n", riskIcon(report.Result.RiskLevel), riskLabel(report.Result.RiskLevel))
	if report.ID != "" {
		fmt.Fprintf(&sb, "| Prediction ID | `%s` |\n", report.ID)
	}
	if !report.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "| Scored at | %s |\n", report.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}

	return sb.String()
}

func riskIcon(r scoring.RiskLevel) string {
	switch r {
	case scoring.RiskCritical:
		return ":red_circle:"
	case scoring.RiskHigh:
		return ":orange_circle:"
	case scoring.RiskMedium:
		return ":yellow_circle:"
	default:
		return ":green_circle:"
	}
}

func riskLabel(r scoring.RiskLevel) string {
	if !r.Valid() {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(r))
}
