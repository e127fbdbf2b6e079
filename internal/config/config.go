// Package config provides configuration structures and loading for breakingchanges.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Usage    UsageConfig    `yaml:"usage" mapstructure:"usage"`
	Diff     DiffConfig     `yaml:"diff" mapstructure:"diff"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a catalog store connection configuration.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql or postgres
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	ConnectAttempts    int    `yaml:"connect_attempts" mapstructure:"connect_attempts"` // 1 = no retry
}

// CatalogConfig describes where the API catalog lives and how its tables are named.
type CatalogConfig struct {
	DatabaseConfig `yaml:",inline" mapstructure:",squash"`
	Tables         CatalogTables `yaml:"tables" mapstructure:"tables"`
	NameCacheSize  int           `yaml:"name_cache_size" mapstructure:"name_cache_size"`
}

// CatalogTables holds the table names of the catalog schema.
type CatalogTables struct {
	AssemblyGroups string `yaml:"assembly_groups" mapstructure:"assembly_groups"`
	APIs           string `yaml:"apis" mapstructure:"apis"`
	Containment    string `yaml:"containment" mapstructure:"containment"`
}

// UsageConfig points at the serialized usage results.
type UsageConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	Compression string `yaml:"compression" mapstructure:"compression"` // auto, none, gzip, zstd
}

// DiffConfig names the two platform slices being compared, by area path.
type DiffConfig struct {
	Before string `yaml:"before" mapstructure:"before"`
	After  string `yaml:"after" mapstructure:"after"`
}

// ReportConfig represents report output settings.
type ReportConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
	CRLF   bool   `yaml:"crlf" mapstructure:"crlf"`
	Open   bool   `yaml:"open" mapstructure:"open"`
	Viewer string `yaml:"viewer" mapstructure:"viewer"`
	Verify string `yaml:"verify" mapstructure:"verify"` // count, sha256 or skip
}

// ProgressConfig controls console progress output.
type ProgressConfig struct {
	Mode     string        `yaml:"mode" mapstructure:"mode"` // auto, always, never
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level    string         `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format   string         `yaml:"format" mapstructure:"format"` // json or text
	Output   string         `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
	Rotation RotationConfig `yaml:"rotation" mapstructure:"rotation"`
}

// RotationConfig defines log file rotation settings (file output only).
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size" mapstructure:"max_size"`       // megabytes
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"` // rotated files kept
	MaxAge     int  `yaml:"max_age" mapstructure:"max_age"`         // days
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DatabaseConfig: DatabaseConfig{
				Driver:             "mysql",
				Port:               3306,
				TLS:                "preferred",
				MaxConnections:     4,
				MaxIdleConnections: 2,
				ConnectAttempts:    1,
			},
			Tables: CatalogTables{
				AssemblyGroups: "assembly_groups",
				APIs:           "apis",
				Containment:    "api_assembly_groups",
			},
			NameCacheSize: 4096,
		},
		Usage: UsageConfig{
			Compression: "auto",
		},
		Report: ReportConfig{
			Output: "breaking-changes.csv",
			Verify: "count",
		},
		Progress: ProgressConfig{
			Mode:     "auto",
			Interval: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
			Rotation: RotationConfig{
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			},
		},
	}
}

// DefaultPort returns the conventional port for a catalog driver.
func DefaultPort(driver string) int {
	if driver == "postgres" {
		return 5432
	}
	return 3306
}
