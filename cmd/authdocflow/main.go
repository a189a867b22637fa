// Package main is the authdocflow command line: it runs an extraction from a
// terminal instead of a Cloud Function.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/authdocflow/internal/config"
	"github.com/Lllllllleong/authdocflow/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "authdocflow",
	Short: "Extract authorization fields from a folder of documents",
	Long: `authdocflow reads every PDF, DOCX and DOC file of a Drive folder (or a
gs:// prefix), recovers name, issuing body, route and authorization year from
each one and writes the table to a Google Sheets tab.

Settings come from ./authdocflow.yaml or --config, overridden by environment
variables such as CREDENTIALS_FILE and TESSERACT_LANG.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./authdocflow.yaml)")
}

// loadConfig reads the configuration and installs the CLI logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(cfg.LogLevel, "text", os.Stderr))
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
