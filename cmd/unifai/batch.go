package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/unifai/unifai/internal/analytics"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
	"github.com/unifai/unifai/pkg/surface"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1 << 20

func newBatchCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "batch <module>",
		Short: "Score a JSONL file of input records",
		Long: `Scores every line of a JSONL file with the named module and writes one JSON
line per input: {"line": N, "result": {...}} or {"line": N, "error": "..."}.

A summary of the scored records is printed to stderr when the run finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := scoring.DefaultRegistry().Get(scoring.Module(args[0]))
			if err != nil {
				return err
			}

			in, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer f.Close()
				out = f
			}

			lines, err := readLines(in)
			if err != nil {
				return err
			}

			progress := io.Discard
			if !quiet {
				progress = os.Stderr
			}
			stats, err := runBatch(lines, out, progress, model)
			if err != nil {
				return err
			}
			printBatchSummary(os.Stderr, stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSONL input file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

type batchLine struct {
	Line   int             `json:"line"`
	Result *scoring.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type batchStats struct {
	Scored  []store.Record
	Failed  int
	Elapsed time.Duration
}

// readLines returns the non-blank lines of r, keyed by their 1-based line number.
func readLines(r io.Reader) (map[int][]byte, error) {
	lines := make(map[int][]byte)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines[n] = bytes.Clone(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

func runBatch(lines map[int][]byte, out, progress io.Writer, model scoring.Model) (*batchStats, error) {
	start := time.Now()

	numbers := make([]int, 0, len(lines))
	for n := range lines {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	bar := progressbar.NewOptions(len(numbers),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(fmt.Sprintf("Scoring %s", model.Key())),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)

	stats := &batchStats{}
	enc := json.NewEncoder(out)
	for _, n := range numbers {
		entry := batchLine{Line: n}
		result, err := model.Predict(lines[n])
		if err != nil {
			entry.Error = err.Error()
			stats.Failed++
		} else {
			entry.Result = &result
			stats.Scored = append(stats.Scored, store.Record{
				ID:        uuid.NewString(),
				Module:    model.Key(),
				Input:     lines[n],
				Result:    result,
				CreatedAt: time.Now().UTC(),
			})
		}
		if err := enc.Encode(entry); err != nil {
			return nil, fmt.Errorf("writing line %d: %w", n, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	stats.Elapsed = time.Since(start)
	return stats, nil
}

func printBatchSummary(w io.Writer, stats *batchStats) {
	summary := analytics.Summarize(stats.Scored, time.Now())

	fmt.Fprintf(w, "Scored %d records (%d failed) in %s\n",
		summary.Total, stats.Failed, stats.Elapsed.Round(time.Millisecond))
	if summary.Total == 0 {
		return
	}
	fmt.Fprintf(w, "  Average confidence: %s\n", surface.FormatPercent(summary.AvgConfidence))
	for _, level := range scoring.RiskLevels {
		if c := summary.ByRisk[level]; c > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", level+":", c)
		}
	}
}
