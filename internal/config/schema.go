package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Failure policies for documents that cannot be identified or read.
const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Config holds fundrecon configuration.
// Stored at: ./config.yaml or ~/.fundrecon/config.yaml
type Config struct {
	Input      InputCfg  `mapstructure:"input" yaml:"input"`
	Output     OutputCfg `mapstructure:"output" yaml:"output"`
	Home       string    `mapstructure:"home" yaml:"home"`             // Holds user catalogs; empty = ~/.fundrecon
	Catalog    string    `mapstructure:"catalog" yaml:"catalog"`       // Catalog name (built-in or in <home>/catalogs) or path
	Identifier string    `mapstructure:"identifier" yaml:"identifier"` // Overrides the catalog's identifier pattern
	Workers    int       `mapstructure:"workers" yaml:"workers"`       // 0 = one per CPU
	OnError    string    `mapstructure:"on_error" yaml:"on_error"`     // skip | abort
	LogLevel   string    `mapstructure:"log_level" yaml:"log_level"`
	Watch      WatchCfg  `mapstructure:"watch" yaml:"watch"`
}

// InputCfg selects the documents to read.
type InputCfg struct {
	Dir        string   `mapstructure:"dir" yaml:"dir"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// OutputCfg configures the consolidated table and audit report.
type OutputCfg struct {
	Path            string `mapstructure:"path" yaml:"path"`
	Format          string `mapstructure:"format" yaml:"format"`       // csv | xlsx
	Delimiter       string `mapstructure:"delimiter" yaml:"delimiter"` // single character, "tab" for tabs
	Encoding        string `mapstructure:"encoding" yaml:"encoding"`   // utf-8 | utf-8-bom | windows-1252
	IdentifierLabel string `mapstructure:"identifier_label" yaml:"identifier_label"`
	AuditPath       string `mapstructure:"audit_path" yaml:"audit_path"` // empty = no audit report
}

// WatchCfg configures watch mode.
type WatchCfg struct {
	Debounce       time.Duration `mapstructure:"debounce" yaml:"debounce"`
	SettleAttempts uint          `mapstructure:"settle_attempts" yaml:"settle_attempts"`
	SettleDelay    time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputCfg{
			Dir:        "./input",
			Extensions: []string{".pdf"},
		},
		Output: OutputCfg{
			Path:            "./output/reconciliation.csv",
			Format:          "csv",
			Delimiter:       ";",
			Encoding:        "utf-8",
			IdentifierLabel: "Fund",
		},
		Home:       "",
		Catalog:    "nl",
		Identifier: "",
		Workers:    0,
		OnError:    OnErrorSkip,
		LogLevel:   "info",
		Watch: WatchCfg{
			Debounce:       2 * time.Second,
			SettleAttempts: 10,
			SettleDelay:    500 * time.Millisecond,
		},
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.OnError {
	case OnErrorSkip, OnErrorAbort:
	default:
		return fmt.Errorf("on_error must be %q or %q, got %q", OnErrorSkip, OnErrorAbort, c.OnError)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Catalog == "" {
		return fmt.Errorf("catalog must be set")
	}
	return nil
}

// Resolved returns a copy with ${ENV_VAR} references expanded in paths.
func (c *Config) Resolved() *Config {
	out := *c
	out.Input.Extensions = append([]string(nil), c.Input.Extensions...)
	out.Input.Dir = ResolveEnvVars(c.Input.Dir)
	out.Output.Path = ResolveEnvVars(c.Output.Path)
	out.Output.AuditPath = ResolveEnvVars(c.Output.AuditPath)
	out.Home = ResolveEnvVars(c.Home)
	out.Catalog = ResolveEnvVars(c.Catalog)
	return &out
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
