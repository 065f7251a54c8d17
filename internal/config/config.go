package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var ErrMissingSecret = errors.New("config: JWT_SECRET is required")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Auth      AuthConfig      `toml:"auth"`
	Stats     StatsConfig     `toml:"stats"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type DatabaseConfig struct {
	Driver     string `toml:"driver"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	Name       string `toml:"name"`
	SQLitePath string `toml:"sqlite_path"`
}

type RedisConfig struct {
	Host     string        `toml:"host"`
	Port     string        `toml:"port"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type AuthConfig struct {
	Secret        string        `toml:"secret"`
	Issuer        string        `toml:"issuer"`
	TokenDuration time.Duration `toml:"token_duration"`
}

type StatsConfig struct {
	Timezone        string `toml:"timezone"`
	MaxLookbackDays int    `toml:"max_lookback_days"`
}

type RateLimitConfig struct {
	Limit  int           `toml:"limit"`
	Window time.Duration `toml:"window"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver:     DriverPostgres,
			Host:       "localhost",
			Port:       "5432",
			SQLitePath: "habits.db",
		},
		Redis: RedisConfig{
			Port:     "6379",
			CacheTTL: 30 * time.Minute,
		},
		Auth: AuthConfig{
			Issuer:        "kanso-habit-stats",
			TokenDuration: 24 * time.Hour,
		},
		Stats: StatsConfig{
			Timezone:        "UTC",
			MaxLookbackDays: 3653,
		},
		RateLimit: RateLimitConfig{
			Limit:  100,
			Window: time.Minute,
		},
	}
}

// Load reads .env (if present), then the TOML file named by KANSO_CONFIG,
// then the process environment. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Getenv("KANSO_CONFIG"), os.LookupEnv)
}

// LoadFrom is Load with an explicit file path and environment lookup.
// An empty path skips the file.
func LoadFrom(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s must be a duration: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &cfg.Server.Port)

	str("STORAGE_DRIVER", &cfg.Database.Driver)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_PORT", &cfg.Database.Port)
	str("DB_NAME", &cfg.Database.Name)
	str("SQLITE_PATH", &cfg.Database.SQLitePath)

	str("REDIS_HOST", &cfg.Redis.Host)
	str("REDIS_PORT", &cfg.Redis.Port)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	str("JWT_SECRET", &cfg.Auth.Secret)
	str("JWT_ISSUER", &cfg.Auth.Issuer)

	str("STATS_TIMEZONE", &cfg.Stats.Timezone)

	for _, err := range []error{
		num("REDIS_DB", &cfg.Redis.DB),
		dur("REDIS_CACHE_TTL", &cfg.Redis.CacheTTL),
		dur("JWT_DURATION", &cfg.Auth.TokenDuration),
		num("STATS_MAX_LOOKBACK_DAYS", &cfg.Stats.MaxLookbackDays),
		num("RATE_LIMIT", &cfg.RateLimit.Limit),
		dur("RATE_WINDOW", &cfg.RateLimit.Window),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Database.Driver)
	}

	if c.Auth.Secret == "" {
		return ErrMissingSecret
	}
	if c.Stats.MaxLookbackDays <= 0 {
		return fmt.Errorf("config: STATS_MAX_LOOKBACK_DAYS must be positive, got %d", c.Stats.MaxLookbackDays)
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate limit and window must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

// Location is the zone "today" is evaluated in when a request omits as_of.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: bad STATS_TIMEZONE %q: %w", c.Stats.Timezone, err)
	}
	return loc, nil
}

// RedisEnabled reports whether a Redis host was configured at all.
func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
