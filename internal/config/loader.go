package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// A .env file next to the config (if any) is loaded first so that
// ${VAR} references can pick up catalog credentials.
func Load(configPath string) (*Config, error) {
	loadDotEnv(configPath)

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Postgres catalogs listen on a different port unless told otherwise
	if !v.IsSet("catalog.port") {
		cfg.Catalog.Port = DefaultPort(cfg.Catalog.Driver)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// loadDotEnv loads .env from the working directory and from the config's
// directory. Existing environment variables are never overridden.
func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if dir := filepath.Dir(configPath); dir != "." && dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Catalog.Host = expandEnvVar(cfg.Catalog.Host)
	cfg.Catalog.User = expandEnvVar(cfg.Catalog.User)
	cfg.Catalog.Password = expandEnvVar(cfg.Catalog.Password)
	cfg.Catalog.Database = expandEnvVar(cfg.Catalog.Database)

	cfg.Usage.Path = expandEnvVar(cfg.Usage.Path)
	cfg.Report.Output = expandEnvVar(cfg.Report.Output)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides holds CLI flag values that take precedence over the config file.
// Only non-empty values are applied.
type Overrides struct {
	LogLevel   string
	LogFormat  string
	Before     string
	After      string
	UsagePath  string
	Output     string
	Open       bool
	NoProgress bool
}

// ApplyOverrides applies CLI flag overrides to the configuration.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Before != "" {
		c.Diff.Before = o.Before
	}
	if o.After != "" {
		c.Diff.After = o.After
	}
	if o.UsagePath != "" {
		c.Usage.Path = o.UsagePath
	}
	if o.Output != "" {
		c.Report.Output = o.Output
	}
	if o.Open {
		c.Report.Open = true
	}
	if o.NoProgress {
		c.Progress.Mode = "never"
	}
}
