package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
	"github.com/unifai/unifai/pkg/surface"
)

func newHistoryCmd() *cobra.Command {
	var (
		module    string
		limit     int
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List predictions saved with predict --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadResults(config.ResultDir(), scoring.Module(module), limit)
			if err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), records, outputFmt)
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "Only show this module")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")

	return cmd
}

// loadResults reads saved records from dir, newest first. Unreadable files are skipped.
func loadResults(dir string, module scoring.Module, limit int) ([]store.Record, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var records []store.Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var rec store.Record
		if err := json.Unmarshal(data, &rec); err != nil || rec.ID == "" {
			continue
		}
		if module != "" && rec.Module != module {
			continue
		}
		records = append(records, rec)
	}

	slices.SortFunc(records, func(a, b store.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func renderHistory(w io.Writer, records []store.Record, outputFmt string) error {
	switch outputFmt {
	case "json":
		if records == nil {
			records = []store.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "text", "":
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, "No saved predictions.")
			return err
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "MODULE", "PREDICTION", "CONFIDENCE", "RISK", "CREATED")
		for _, r := range records {
			t.Row(
				r.ID[:min(8, len(r.ID))],
				string(r.Module),
				r.Result.Prediction,
				surface.FormatPercent(r.Result.Confidence),
				string(r.Result.RiskLevel),
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", outputFmt)
	}
}
