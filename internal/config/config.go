// Package config loads server settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/snakeladder/internal/dependencies/random"
	"github.com/mcoot/snakeladder/internal/model"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config is the full server configuration
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Hardware HardwareConfig `yaml:"hardware"`
	Board    BoardConfig    `yaml:"board"`

	AllowedOrigins   []string `yaml:"allowedOrigins"`
	ComputerStrategy string   `yaml:"computerStrategy"`
	LogLevel         string   `yaml:"logLevel"`

	// EphemeralSecret is set when no JWT secret was configured and one was
	// generated for this process
	EphemeralSecret bool `yaml:"-"`
}

// StorageConfig selects and locates the persistence backend
type StorageConfig struct {
	Type          string `yaml:"type"`
	RedisURL      string `yaml:"redisUrl"`
	MongoURI      string `yaml:"mongoUri"`
	MongoDatabase string `yaml:"mongoDatabase"`
	DatabaseURL   string `yaml:"databaseUrl"`
	SQLitePath    string `yaml:"sqlitePath"`
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`
}

// HardwareConfig controls notifications to the physical board
type HardwareConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseUrl"`
	Timeout   time.Duration `yaml:"timeout"`
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queueSize"`
}

// BoardConfig points at an optional custom snake and ladder layout
type BoardConfig struct {
	LayoutFile string `yaml:"layoutFile"`

	// Layout is read from LayoutFile by Load. Nil means the standard board.
	Layout *model.Layout `yaml:"-"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port: 5000,
		Storage: StorageConfig{
			Type:          StorageMemory,
			MongoDatabase: "snakeladder",
			SQLitePath:    "data/snakeladder.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Hardware: HardwareConfig{
			Enabled:   true,
			BaseURL:   "http://192.168.4.1",
			Timeout:   3 * time.Second,
			Workers:   2,
			QueueSize: 64,
		},
		AllowedOrigins:   []string{"http://localhost:5173", "http://192.168.4.1"},
		ComputerStrategy: "random",
		LogLevel:         "info",
	}
}

// Load reads .env, then CONFIG_FILE if set, then environment overrides,
// and validates the result
func Load(rnd random.Random) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.loadLayout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(rnd); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadLayout reads Board.LayoutFile. Its contents are checked when the
// board service is built.
func (c *Config) loadLayout() error {
	path := strings.TrimSpace(c.Board.LayoutFile)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read board layout: %w", err)
	}
	var layout model.Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parse board layout %s: %w", path, err)
	}
	c.Board.Layout = &layout
	return nil
}

// applyEnv overlays environment variables read through getenv
func (c *Config) applyEnv(getenv func(string) string) error {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get("HOST"); v != "" {
		c.Host = v
	}
	if v := get("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = n
	}

	if v := get("STORAGE_TYPE"); v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v := get("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := get("MONGODB_URI"); v != "" {
		c.Storage.MongoURI = v
	}
	if v := get("MONGODB_DATABASE"); v != "" {
		c.Storage.MongoDatabase = v
	}
	if v := get("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := get("SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}

	if v := get("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	} else if v := get("JWT"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := get("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}

	if v := get("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := get("COMPUTER_STRATEGY"); v != "" {
		c.ComputerStrategy = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := get("BOARD_LAYOUT_FILE"); v != "" {
		c.Board.LayoutFile = v
	}

	if v := get("HARDWARE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HARDWARE_ENABLED: %w", err)
		}
		c.Hardware.Enabled = b
	}
	if v := get("HARDWARE_BASE_URL"); v != "" {
		c.Hardware.BaseURL = strings.TrimRight(v, "/")
	}
	if v := get("HARDWARE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HARDWARE_TIMEOUT: %w", err)
		}
		c.Hardware.Timeout = d
	}
	if v := get("HARDWARE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HARDWARE_WORKERS: %w", err)
		}
		c.Hardware.Workers = n
	}
	if v := get("HARDWARE_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HARDWARE_QUEUE_SIZE: %w", err)
		}
		c.Hardware.QueueSize = n
	}
	return nil
}

// Validate checks the configuration. In memory mode a missing JWT secret
// is replaced by a random one that lasts for the life of the process.
func (c *Config) Validate(rnd random.Random) error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("MONGODB_URI required when STORAGE_TYPE=mongo")
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be one of memory, redis, mongo, sqlite, postgres", c.Storage.Type)
	}

	if c.Auth.JWTSecret == "" {
		if c.Storage.Type != StorageMemory {
			return errors.New("JWT_SECRET required unless STORAGE_TYPE=memory")
		}
		c.Auth.JWTSecret = rnd.String(48, secretAlphabet)
		c.EphemeralSecret = true
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	if c.Hardware.Enabled && c.Hardware.BaseURL == "" {
		return errors.New("HARDWARE_BASE_URL required when hardware is enabled")
	}
	return nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
