package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/breakingchanges/internal/config"
)

// saveFlags snapshots the package-level flag variables and restores them
// when the test ends.
func saveFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		cfgFile, logLevel, logFormat                 string
		beforeArea, afterArea, usagePath, outputPath string
		noProgress, openReport                       bool
	}{cfgFile, logLevel, logFormat, beforeArea, afterArea, usagePath, outputPath, noProgress, openReport}
	t.Cleanup(func() {
		cfgFile, logLevel, logFormat = saved.cfgFile, saved.logLevel, saved.logFormat
		beforeArea, afterArea = saved.beforeArea, saved.afterArea
		usagePath, outputPath = saved.usagePath, saved.outputPath
		noProgress, openReport = saved.noProgress, saved.openReport
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breakingchanges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
catalog:
  host: localhost
  user: reader
  database: apicatalog
usage:
  path: NuGet.apiu
diff:
  before: P1
  after: P2
`

func TestGetConfigFile(t *testing.T) {
	saveFlags(t)

	tests := []struct {
		name     string
		cfgValue string
		want     string
	}{
		{name: "empty", cfgValue: "", want: ""},
		{name: "custom config file", cfgValue: "/path/to/custom.yaml", want: "/path/to/custom.yaml"},
		{name: "config file with spaces", cfgValue: "/path/to/my config.yaml", want: "/path/to/my config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.cfgValue
			assert.Equal(t, tt.want, GetConfigFile())
		})
	}
}

func TestGetCLIOverrides(t *testing.T) {
	saveFlags(t)

	logLevel = "debug"
	logFormat = "json"
	beforeArea = "P1"
	afterArea = "P2"
	usagePath = "u.apiu"
	outputPath = "out.csv"
	openReport = true
	noProgress = true

	assert.Equal(t, config.Overrides{
		LogLevel:   "debug",
		LogFormat:  "json",
		Before:     "P1",
		After:      "P2",
		UsagePath:  "u.apiu",
		Output:     "out.csv",
		Open:       true,
		NoProgress: true,
	}, GetCLIOverrides())
}

func TestRootPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	configFlag := flags.Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "breakingchanges.yaml", configFlag.DefValue)

	for _, name := range []string{"log-level", "log-format", "no-progress"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
}

func TestRootSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "groups", "validate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestLoadConfig(t *testing.T) {
	saveFlags(t)

	t.Run("missing file", func(t *testing.T) {
		cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := loadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})

	t.Run("overrides applied", func(t *testing.T) {
		cfgFile = writeConfig(t, minimalConfig)
		afterArea = "P3"
		outputPath = "custom.csv"
		noProgress = true

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "P1", cfg.Diff.Before)
		assert.Equal(t, "P3", cfg.Diff.After)
		assert.Equal(t, "custom.csv", cfg.Report.Output)
		assert.Equal(t, "never", cfg.Progress.Mode)
	})
}
