package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/fundrecon/internal/home"
)

// EnvPrefix prefixes environment overrides, e.g. FUNDRECON_INPUT_DIR.
const EnvPrefix = "FUNDRECON"

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./config.yaml and ~/.fundrecon/config.yaml; a
// missing file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("input.dir", d.Input.Dir)
	v.SetDefault("input.extensions", d.Input.Extensions)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.delimiter", d.Output.Delimiter)
	v.SetDefault("output.encoding", d.Output.Encoding)
	v.SetDefault("output.identifier_label", d.Output.IdentifierLabel)
	v.SetDefault("output.audit_path", d.Output.AuditPath)
	v.SetDefault("home", d.Home)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("identifier", d.Identifier)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("on_error", d.OnError)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.settle_attempts", d.Watch.SettleAttempts)
	v.SetDefault("watch.settle_delay", d.Watch.SettleDelay)

	// Environment variables with FUNDRECON_ prefix; nested keys use underscores.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if h, err := home.New(""); err == nil {
			v.AddConfigPath(h.Path())
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// BindFlag lets a command-line flag override a config key when it is set.
func (cm *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for config key %q", key)
	}
	if err := cm.v.BindPFlag(key, flag); err != nil {
		return err
	}
	return cm.Reload()
}

// Reload re-reads viper state, e.g. after binding flags.
func (cm *Manager) Reload() error {
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the config file in use, or "" when running on defaults.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. Invalid edits are
// ignored and the previous configuration stays in effect.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// LoadDotEnv loads KEY=value pairs from .env files into the environment.
// Variables already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	// Durations are written as strings ("2s") rather than nanoseconds.
	doc := struct {
		Input      InputCfg       `yaml:"input"`
		Output     OutputCfg      `yaml:"output"`
		Home       string         `yaml:"home"`
		Catalog    string         `yaml:"catalog"`
		Identifier string         `yaml:"identifier"`
		Workers    int            `yaml:"workers"`
		OnError    string         `yaml:"on_error"`
		LogLevel   string         `yaml:"log_level"`
		Watch      map[string]any `yaml:"watch"`
	}{
		Input:      cfg.Input,
		Output:     cfg.Output,
		Home:       cfg.Home,
		Catalog:    cfg.Catalog,
		Identifier: cfg.Identifier,
		Workers:    cfg.Workers,
		OnError:    cfg.OnError,
		LogLevel:   cfg.LogLevel,
		Watch: map[string]any{
			"debounce":        cfg.Watch.Debounce.String(),
			"settle_attempts": cfg.Watch.SettleAttempts,
			"settle_delay":    cfg.Watch.SettleDelay.String(),
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# fundrecon configuration
# Paths may reference environment variables with ${ENV_VAR} syntax.
# Every key can be overridden with FUNDRECON_<KEY>, e.g. FUNDRECON_OUTPUT_PATH.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
