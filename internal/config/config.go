// Package config loads the server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/repeatcal/recurrence"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// StorageConfig selects the event store.
type StorageConfig struct {
	// Driver is "memory" (default) or "sqlite".
	Driver string `yaml:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`
}

// RedisConfig enables change publishing when Addr is set.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config is the top-level server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Horizon is the last date (YYYY-MM-DD) any occurrence may fall on.
	Horizon string `yaml:"horizon"`

	// MaxOccurrences caps the length of one expanded series.
	MaxOccurrences int `yaml:"max_occurrences"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins is the CORS origin list of the browser UI.
	AllowedOrigins []string `yaml:"allowed_origins"`

	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	engine := recurrence.DefaultEngineConfig
	return &Config{
		Listen:          "127.0.0.1:8080",
		LogLevel:        "info",
		Horizon:         engine.Horizon.String(),
		MaxOccurrences:  engine.MaxOccurrences,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins:  []string{"*"},
		Storage: StorageConfig{
			Driver:     DriverMemory,
			SQLitePath: "repeatcal.db",
		},
		Redis: RedisConfig{
			Channel: "repeatcal:events",
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled files still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Horizon == "" {
		c.Horizon = def.Horizon
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = def.MaxOccurrences
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = def.AllowedOrigins
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = def.Storage.SQLitePath
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = def.Redis.Channel
	}
}

// Validate reports values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Engine(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return errors.New("basic auth needs both username and password")
	}
	return nil
}

// Engine returns the recurrence settings.
func (c *Config) Engine() (recurrence.EngineConfig, error) {
	horizon, err := civil.ParseDate(c.Horizon)
	if err != nil {
		return recurrence.EngineConfig{}, fmt.Errorf("invalid horizon %q: %w", c.Horizon, err)
	}
	return recurrence.EngineConfig{Horizon: horizon, MaxOccurrences: c.MaxOccurrences}, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600 perms
//     and returned.
//   - If the file exists, it is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename. The final
// file has 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".repeatcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored. Variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from REPEATCAL_* environment variables.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("REPEATCAL_LISTEN", &c.Listen)
	setString("REPEATCAL_LOG_LEVEL", &c.LogLevel)
	setString("REPEATCAL_HORIZON", &c.Horizon)
	setString("REPEATCAL_STORAGE", &c.Storage.Driver)
	setString("REPEATCAL_SQLITE_PATH", &c.Storage.SQLitePath)
	setString("REPEATCAL_REDIS_ADDR", &c.Redis.Addr)
	setString("REPEATCAL_REDIS_CHANNEL", &c.Redis.Channel)

	if user, ok := os.LookupEnv("REPEATCAL_BASIC_AUTH_USER"); ok && user != "" {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: os.Getenv("REPEATCAL_BASIC_AUTH_PASSWORD")}
	}
	if v, ok := os.LookupEnv("REPEATCAL_MAX_OCCURRENCES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REPEATCAL_MAX_OCCURRENCES %q: %w", v, err)
		}
		c.MaxOccurrences = n
	}
	if v, ok := os.LookupEnv("REPEATCAL_ALLOWED_ORIGINS"); ok && v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.AllowedOrigins = origins
	}
	return nil
}
