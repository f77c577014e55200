package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/unifai/unifai/pkg/scoring"
)

func newModulesCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the prediction modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd.OutOrStdout(), scoring.DefaultRegistry(), outputFmt)
		},
	}
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

type moduleInfo struct {
	Key      scoring.Module   `json:"key"`
	Name     string           `json:"name"`
	Category scoring.Category `json:"category"`
}

func runModules(w io.Writer, reg *scoring.Registry, outputFmt string) error {
	var infos []moduleInfo
	for _, m := range reg.Models() {
		infos = append(infos, moduleInfo{Key: m.Key(), Name: m.Name(), Category: m.Category()})
	}

	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "text", "":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("MODULE", "NAME", "CATEGORY")
		for _, info := range infos {
			t.Row(string(info.Key), info.Name, string(info.Category))
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", outputFmt)
	}
}
