// Package cli defines the rachaai command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Arthurk12/racha-ai/internal/config"
	"github.com/Arthurk12/racha-ai/pkg/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rachaai",
	Short: "Racha AI shared-expense server",
	Long: `Racha AI tracks shared expenses in short-lived groups and works out
who owes whom: per-user balances, suggested transfers and per-pair
debt breakdowns, with one-click settling.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to the TOML config file")
}

// Execute runs the CLI. It is the program's entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level)
	return cfg, nil
}
