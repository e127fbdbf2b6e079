package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/breakingchanges/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile    string
	logLevel   string
	logFormat  string
	noProgress bool

	beforeArea string
	afterArea  string
	usagePath  string
	outputPath string
	openReport bool
)

var rootCmd = &cobra.Command{
	Use:   "breakingchanges",
	Short: "Breaking change report for platform API slices",
	Long: `Computes the APIs that were present in one platform slice and are missing
from another, and reports every removed API together with the packages
known to use it.

Inputs:
  - Usage results: which packages reference which APIs (JSON, optionally gzip or zstd)
  - API catalog: APIs, their parents and assembly group membership (MySQL or PostgreSQL)

Output:
  - CSV with one row per removed API and using package`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "breakingchanges.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false,
		"Disable console progress output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Before:     beforeArea,
		After:      afterArea,
		UsagePath:  usagePath,
		Output:     outputPath,
		Open:       openReport,
		NoProgress: noProgress,
	}
}

// loadConfig reads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(GetCLIOverrides())
	return cfg, nil
}
