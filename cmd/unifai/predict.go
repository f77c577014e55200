package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unifai/unifai/internal/gateway"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
	"github.com/unifai/unifai/pkg/surface"
)

func newPredictCmd() *cobra.Command {
	var opts predictOpts

	cmd := &cobra.Command{
		Use:   "predict <module>",
		Short: "Score one input record",
		Long: `Scores a single JSON input record with the named module.

The record is read from --input (a file, or - for stdin) and individual fields can
be set or overridden with --set key=value. Values that parse as JSON are used as
such; anything else is taken as a string.

  unifai predict fraud_upi --set amount=75000 --set time=02:30
  unifai predict environment_crop --input field.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.module = args[0]
			return runPredict(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Input JSON file, or - for stdin")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Set an input field (key=value), repeatable")
	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json or markdown")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the result to the local result history")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Ask the model gateway to explain the prediction")

	return cmd
}

type predictOpts struct {
	module    string
	inputPath string
	sets      []string
	outputFmt string
	save      bool
	explain   bool
	resultDir string // overrides config.ResultDir, for tests
}

func runPredict(ctx context.Context, stdin io.Reader, stdout io.Writer, opts predictOpts) error {
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	model, err := scoring.DefaultRegistry().Get(scoring.Module(opts.module))
	if err != nil {
		return err
	}

	raw, err := buildInput(stdin, opts.inputPath, opts.sets)
	if err != nil {
		return err
	}

	result, err := model.Predict(raw)
	if err != nil {
		return err
	}

	rec := store.Record{
		ID:        uuid.NewString(),
		Module:    model.Key(),
		Input:     raw,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	if opts.explain {
		rec.Explanation, err = explain(ctx, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: explanation unavailable: %v\n", err)
		}
	}

	report := &surface.Report{
		ID:         rec.ID,
		Module:     rec.Module,
		ModuleName: model.Name(),
		Result:     rec.Result,
		CreatedAt:  rec.CreatedAt,
	}
	if err := renderer.Render(stdout, report); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	if rec.Explanation != "" {
		fmt.Fprintf(stdout, "\n%s\n", rec.Explanation)
	}

	if opts.save {
		dir := opts.resultDir
		if dir == "" {
			dir = config.ResultDir()
		}
		path, err := saveResult(dir, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save result: %v\n", err)
			return nil
		}
		fmt.Fprintf(os.Stderr, "Result saved: %s\n", path)
	}
	return nil
}

func explain(ctx context.Context, rec store.Record) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cfg := loadConfig(wd)
	client := gateway.New(cfg.Gateway)
	return client.Explain(ctx, gateway.ExplainRequest{
		Module:     string(rec.Module),
		Input:      rec.Input,
		Prediction: rec.Result.Prediction,
		Confidence: rec.Result.Confidence,
		RiskLevel:  string(rec.Result.RiskLevel),
	})
}

// buildInput assembles the JSON record from an optional file and key=value
// assignments.
func buildInput(stdin io.Reader, path string, sets []string) (json.RawMessage, error) {
	var base []byte
	switch path {
	case "":
		if len(sets) == 0 {
			return nil, errors.New("no input: pass --input or --set")
		}
		base = []byte("{}")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		base = data
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		base = data
	}

	if len(sets) == 0 {
		return bytes.TrimSpace(base), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil || fields == nil {
		return nil, errors.New("input must be a JSON object to apply --set")
	}
	for _, assignment := range sets {
		key, value, ok := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", assignment)
		}
		fields[key] = fieldValue(value)
	}
	return json.Marshal(fields)
}

// fieldValue keeps JSON literals (numbers, booleans, quoted strings, null) and quotes
// everything else.
func fieldValue(v string) json.RawMessage {
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	quoted, _ := json.Marshal(v)
	return quoted
}

// saveResult writes rec to dir/<id>.json and returns the path.
func saveResult(dir string, rec store.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	path := filepath.Join(dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
