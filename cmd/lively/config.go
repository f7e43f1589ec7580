package main

import (
	"github.com/spf13/cobra"

	"github.com/mathrick/lively/internal/cli"
)

// loadConfig resolves the effective configuration: file first, then flag
// overrides.
func loadConfig(cmd *cobra.Command) (cli.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cli.Load(path)
	if err != nil {
		return cfg, err
	}
	if interval, _ := cmd.Flags().GetFloat64("interval"); interval > 0 {
		cfg.IntervalSeconds = interval
	}
	if eval, _ := cmd.Flags().GetString("evaluator"); eval != "" {
		cfg.Evaluator = eval
	}
	return cfg, nil
}
