package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fincontrol/internal/cli"
	"fincontrol/internal/config"
)

var (
	flagConfig string
	flagJSON   bool
	flagEnv    bool
)

var rootCmd = &cobra.Command{
	Use:           "fincalc",
	Short:         "Personal finance calculators",
	Long:          "Compound interest, drawdown, emergency fund, million target and driver economics, plus offline aggregation of a records file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagEnv {
			cli.LoadEnvFile()
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.CalcDefaultsPath(), "Calculator defaults file (TOML)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagEnv, "env", false, "Load .env before running")
}

// defaultsPath is --config, else CALC_DEFAULTS_PATH, else the XDG location.
func defaultsPath() string {
	if env := os.Getenv("CALC_DEFAULTS_PATH"); env != "" && !rootCmd.PersistentFlags().Changed("config") {
		return env
	}
	return flagConfig
}

func loadDefaults() (config.CalcDefaults, error) {
	return config.LoadCalcDefaults(defaultsPath())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
