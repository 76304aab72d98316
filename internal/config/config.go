// Package config builds the process-wide configuration once at startup.
// Values come from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	// MinSecretLength is the shortest JWT signing secret accepted.
	MinSecretLength = 32

	devSecret = "dev-secret-change-me-0123456789abcdef"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET must be set in production")
	ErrShortSecret   = fmt.Errorf("JWT_SECRET must be at least %d characters long", MinSecretLength)
)

type Config struct {
	Env             string
	Port            string
	Version         string
	BcryptCost      int
	SummaryCacheTTL time.Duration

	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig
	HTTP  HTTPConfig
	Log   LogConfig

	// Warnings collects non-fatal problems found while loading (bad
	// durations, dev secret in use). The caller logs them once a logger exists.
	Warnings []string
}

type DBConfig struct {
	Driver         string
	DSN            string
	MaxOpenConns   int
	SkipMigrations bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
	BodyLimit    int
}

type LogConfig struct {
	Level  string
	Format string
}

// Enabled reports whether a Redis server was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		Env:             r.str("ENV", "development"),
		Port:            r.str("PORT", "8080"),
		Version:         getenv("APP_VERSION"),
		BcryptCost:      r.int("BCRYPT_COST", 12),
		SummaryCacheTTL: r.duration("SUMMARY_CACHE_TTL", 30*time.Second),
		DB: DBConfig{
			Driver:         strings.ToLower(r.str("DB_DRIVER", DriverMySQL)),
			MaxOpenConns:   r.int("DB_MAX_OPEN_CONNS", 25),
			SkipMigrations: r.bool("DB_SKIP_MIGRATIONS"),
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET"),
			TTL:    r.duration("JWT_TTL", 24*time.Hour),
			Issuer: r.str("JWT_ISSUER", "salesdash"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR")),
			Password: getenv("REDIS_PASSWORD"),
			DB:       r.int("REDIS_DB", 0),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  r.duration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: r.duration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			CORSOrigins:  r.str("CORS_ORIGINS", "*"),
			BodyLimit:    r.int("HTTP_BODY_LIMIT", 1<<20),
		},
		Log: LogConfig{
			Level:  r.str("LOG_LEVEL", "info"),
			Format: r.str("LOG_FORMAT", "json"),
		},
	}

	dsn, err := buildDSN(cfg.DB.Driver, getenv)
	if err != nil {
		return nil, err
	}
	cfg.DB.DSN = dsn

	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		r.warn("JWT_SECRET not set, using development secret")
		cfg.JWT.Secret = devSecret
	}

	cfg.Warnings = r.warnings
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the server refuses to start without.
func (c *Config) Validate() error {
	switch {
	case c.JWT.Secret == "":
		return ErrMissingSecret
	case len(c.JWT.Secret) < MinSecretLength:
		return ErrShortSecret
	}
	if c.DB.Driver != DriverMySQL && c.DB.Driver != DriverPostgres {
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DB.Driver, DriverMySQL, DriverPostgres)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// buildDSN prefers DATABASE_URL and otherwise assembles one from the DB_*
// variables. MySQL DSNs always get parseTime=true so DATETIME columns scan
// into time.Time.
func buildDSN(driver string, getenv func(string) string) (string, error) {
	if dsn := strings.TrimSpace(getenv("DATABASE_URL")); dsn != "" {
		if driver != DriverMySQL {
			return dsn, nil
		}
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	}

	user := getenv("DB_USER")
	pass := getenv("DB_PASS")
	host := getenv("DB_HOST")
	port := getenv("DB_PORT")
	name := getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}

	switch driver {
	case DriverMySQL:
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name), nil
	case DriverPostgres:
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(user, pass),
			Host:     host + ":" + port,
			Path:     "/" + name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", driver, DriverMySQL, DriverPostgres)
	}
}

type reader struct {
	getenv   func(string) string
	warnings []string
}

func (r *reader) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.warn("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func (r *reader) bool(key string) bool {
	v := strings.TrimSpace(r.getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.warn("invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
