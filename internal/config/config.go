package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDir     = ".phoneterm"
	configFile = "config.yaml"
	logFile    = "phoneterm.log"
)

// Config is the phoneterm configuration, read from YAML and overridden by
// PHONETERM_* environment variables.
type Config struct {
	DataDir  string        `yaml:"data_dir"`
	Backend  string        `yaml:"backend"` // file, sqlite
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
	Theme    string        `yaml:"theme"` // mocha, latte
	ToastTTL time.Duration `yaml:"toast_ttl"`
	Watch    bool          `yaml:"watch"`

	// Passphrase enables encryption of the stored phonebook. It is only
	// read from PHONETERM_PASSPHRASE and never written to disk.
	Passphrase string `yaml:"-"`
}

func DefaultDataDir() string {
	if dir := os.Getenv("PHONETERM_DATA_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(homeDir, appDir)
}

func DefaultPath() string {
	return PathIn(DefaultDataDir())
}

// DefaultConfig returns the built-in settings for the default data directory.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Backend:  "file",
		LogLevel: "info",
		Theme:    "mocha",
		ToastTTL: 3 * time.Second,
		Watch:    true,
	}
}

// Load reads the YAML file at path, or the default location when path is
// empty. A missing file yields the defaults. Environment variables override
// whatever the file says.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, logFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML. The passphrase is never written.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.DataDir = getEnvOrDefault("PHONETERM_DATA_DIR", c.DataDir)
	c.Backend = getEnvOrDefault("PHONETERM_BACKEND", c.Backend)
	c.LogLevel = getEnvOrDefault("PHONETERM_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvOrDefault("PHONETERM_LOG_FILE", c.LogFile)
	c.Theme = getEnvOrDefault("PHONETERM_THEME", c.Theme)
	c.ToastTTL = parseDurationOrDefault("PHONETERM_TOAST_TTL", c.ToastTTL)
	c.Watch = parseBoolOrDefault("PHONETERM_WATCH", c.Watch)
	c.Passphrase = getEnvOrDefault("PHONETERM_PASSPHRASE", c.Passphrase)
}

// Validate checks every field against its allowed values.
func (c *Config) Validate() error {
	switch c.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid backend: %s (must be 'file' or 'sqlite')", c.Backend)
	}

	switch c.Theme {
	case "mocha", "latte":
	default:
		return fmt.Errorf("invalid theme: %s (must be 'mocha' or 'latte')", c.Theme)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.ToastTTL <= 0 {
		return fmt.Errorf("toast TTL must be positive, got: %v", c.ToastTTL)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	return nil
}

// SetDataDir moves the data directory. A log file that lived at the default
// location moves along with it.
func (c *Config) SetDataDir(dir string) {
	if c.LogFile == filepath.Join(c.DataDir, logFile) {
		c.LogFile = filepath.Join(dir, logFile)
	}
	c.DataDir = dir
}

// PathIn returns the config file location inside dataDir.
func PathIn(dataDir string) string {
	return filepath.Join(dataDir, configFile)
}

// Encrypted reports whether the phonebook should be stored encrypted.
func (c *Config) Encrypted() bool {
	return c.Passphrase != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
