package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lively",
	Short: "Lively renders live expression results inside plain text documents",
	Long: `Lively tracks {{...}} expression segments in a document, evaluates them
periodically, and shows the results in place while keeping the source
editable whenever the cursor is nearby.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "lively.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Float64("interval", 0, "Refresh interval in seconds (overrides config)")
	rootCmd.PersistentFlags().String("evaluator", "", "Evaluator to use: shell or calc (overrides config)")
}
