// Package main provides the unifai CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unifai/unifai/pkg/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unifai",
		Short: "Rule-based predictions for fraud, content, health and environment signals",
		Long: `unifai scores input records with deterministic rule-based models: UPI, card and
phishing fraud, fake news and reviews, cyberbullying, stress and diabetes risk,
crop choice, air quality and plant disease.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newModulesCmd(),
		newPredictCmd(),
		newBatchCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// loadConfig reads .unifai/config.yaml from dir or its parents, falling back to
// defaults.
func loadConfig(dir string) *config.Config {
	cfgFile := config.FindConfigFile(dir)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}
