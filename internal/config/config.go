// Package config loads settings from an optional YAML file and the environment.
// Environment variables use the upper-cased key, e.g. PROJECT_ID.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Lllllllleong/authdocflow/internal/textract"
)

// Config holds every setting shared by the CLI and the cloud functions.
type Config struct {
	ProjectID         string `mapstructure:"project_id"`
	CredentialsFile   string `mapstructure:"credentials_file"`
	RunsCollection    string `mapstructure:"runs_collection"`
	ExportBucket      string `mapstructure:"export_bucket"`
	DownloadDir       string `mapstructure:"download_dir"`
	DownloadWorkers   int    `mapstructure:"download_workers"`
	SpreadsheetTitle  string `mapstructure:"spreadsheet_title"`
	IncludeSourceFile bool   `mapstructure:"include_source_file"`

	TesseractCmd    string `mapstructure:"tesseract_cmd"`
	TesseractLang   string `mapstructure:"tesseract_lang"`
	PdftoppmCmd     string `mapstructure:"pdftoppm_cmd"`
	OCRDPI          int    `mapstructure:"ocr_dpi"`
	DocConverterCmd string `mapstructure:"doc_converter_cmd"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"project_id":          "",
	"credentials_file":    "",
	"runs_collection":     "extractionRuns",
	"export_bucket":       "",
	"download_dir":        "",
	"download_workers":    4,
	"spreadsheet_title":   "Planilha Extração Dados",
	"include_source_file": false,
	"tesseract_cmd":       "tesseract",
	"tesseract_lang":      "por",
	"pdftoppm_cmd":        "pdftoppm",
	"ocr_dpi":             72,
	"doc_converter_cmd":   "antiword",
	"log_level":           "info",
	"log_format":          "json",
}

// Load reads configFile when given, otherwise ./authdocflow.yaml if present,
// then overlays environment variables.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("authdocflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no run could work with.
func (c *Config) Validate() error {
	if c.DownloadWorkers < 1 {
		return fmt.Errorf("DOWNLOAD_WORKERS must be at least 1, got %d", c.DownloadWorkers)
	}
	if c.OCRDPI < 1 {
		return fmt.Errorf("OCR_DPI must be positive, got %d", c.OCRDPI)
	}
	if c.RunsCollection == "" {
		return fmt.Errorf("RUNS_COLLECTION must not be empty")
	}
	return nil
}

// Textract returns the acquisition settings.
func (c *Config) Textract() textract.Config {
	return textract.Config{
		Pdftoppm:      c.PdftoppmCmd,
		Tesseract:     c.TesseractCmd,
		TesseractLang: c.TesseractLang,
		DocConverter:  c.DocConverterCmd,
		DPI:           c.OCRDPI,
	}
}
