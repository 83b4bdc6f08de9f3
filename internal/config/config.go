// Package config loads flowr's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = "FLOWR_CONFIG"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverHTTP     = "http"
)

// Vocabulary backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the flowr configuration.
type Config struct {
	Env        string           `yaml:"env"` // local, dev, prod
	Logging    LoggingConfig    `yaml:"logging"`
	Store      StoreConfig      `yaml:"store"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Auth       AuthConfig       `yaml:"auth"`
	DataDir    string           `yaml:"data_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StoreConfig selects where products and reviews live.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the request timeout for remote stores.
func (s StoreConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// VocabularyConfig selects where custom vocabulary and the session are kept.
type VocabularyConfig struct {
	Backend       string   `yaml:"backend"`
	Path          string   `yaml:"path"`
	RedisAddrs    []string `yaml:"redis_addrs"`
	RedisPassword string   `yaml:"redis_password"`
	RedisPrefix   string   `yaml:"redis_prefix"`
}

// AuthConfig holds local session settings.
type AuthConfig struct {
	Secret   string `yaml:"secret"` // generated and kept in the state store when empty
	TTLHours int    `yaml:"ttl_hours"`
}

// TTL returns the session lifetime.
func (a AuthConfig) TTL() time.Duration {
	return time.Duration(a.TTLHours) * time.Hour
}

// Load reads configuration from path. An empty path falls back to
// $FLOWR_CONFIG and then the per-user default location; a missing default
// file yields the built-in defaults.
func Load(path string) (Config, error) {
	// A .env next to the working directory is optional.
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultPath is $XDG_CONFIG_HOME/flowr/config.yaml or the platform equivalent.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "flowr", "config.yaml")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "flowr", "config.yaml")
	}
	return filepath.Join(".flowr", "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/flowr or ~/.local/share/flowr.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "flowr")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "flowr")
	}
	return ".flowr"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Driver == DriverSQLite && c.Store.DSN == "" {
		c.Store.DSN = filepath.Join(c.DataDir, "catalog.db")
	}
	if c.Store.TimeoutSec <= 0 {
		c.Store.TimeoutSec = 15
	}
	if c.Vocabulary.Backend == "" {
		c.Vocabulary.Backend = BackendSQLite
	}
	if c.Vocabulary.Backend == BackendSQLite && c.Vocabulary.Path == "" {
		c.Vocabulary.Path = filepath.Join(c.DataDir, "state.db")
	}
	if c.Vocabulary.RedisPrefix == "" {
		c.Vocabulary.RedisPrefix = "flowr:"
	}
	if c.Auth.TTLHours <= 0 {
		c.Auth.TTLHours = 24 * 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("env must be local, dev or prod, got %q", c.Env)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	case DriverHTTP:
		if c.Store.BaseURL == "" {
			return fmt.Errorf("store.base_url is required for the http driver")
		}
	default:
		return fmt.Errorf("store.driver must be sqlite, postgres or http, got %q", c.Store.Driver)
	}

	switch c.Vocabulary.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if len(c.Vocabulary.RedisAddrs) == 0 {
			return fmt.Errorf("vocabulary.redis_addrs is required for the redis backend")
		}
	default:
		return fmt.Errorf("vocabulary.backend must be sqlite, redis or memory, got %q", c.Vocabulary.Backend)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
