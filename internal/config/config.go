package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const envDevelopment = "development"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Media    MediaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BasePath              string
	BodyLimitMB           int
	AllowedOrigins        []string
	RequestTimeoutSeconds int

	// ProxyHeader names the header carrying the client IP behind a load
	// balancer, e.g. X-Forwarded-For. Empty means the socket address is used.
	ProxyHeader    string
	TrustedProxies []string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret          string
	SessionTTLHours    int
	CookieName         string
	BcryptCost         int
	LoginMaxAttempts   int
	LoginWindowMinutes int
}

// MediaConfig points profile image uploads at an S3 compatible bucket.
// Uploads are disabled when Bucket is empty.
type MediaConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	MaxImageMB    int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "research-hive-api"),
			Env:                   getEnv("NODE_ENV", os.Getenv("APP_ENV")),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "5001")),
			Version:               getEnv("APP_VERSION", "dev"),
			BasePath:              getEnv("APP_BASE_PATH", "/api"),
			BodyLimitMB:           getEnvAsInt("APP_BODY_LIMIT_MB", 50),
			AllowedOrigins:        getEnvAsList("APP_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			ProxyHeader:           os.Getenv("APP_PROXY_HEADER"),
			TrustedProxies:        getEnvAsList("APP_TRUSTED_PROXIES", nil),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:          os.Getenv("JWT_SECRET"),
			SessionTTLHours:    getEnvAsInt("AUTH_SESSION_TTL_HOURS", 7*24),
			CookieName:         getEnv("AUTH_COOKIE_NAME", "jwt"),
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 10),
			LoginMaxAttempts:   getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowMinutes: getEnvAsInt("AUTH_LOGIN_WINDOW_MINUTES", 15),
		},
		Media: MediaConfig{
			Bucket:        os.Getenv("MEDIA_S3_BUCKET"),
			Region:        getEnv("MEDIA_S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("MEDIA_S3_ENDPOINT"),
			AccessKey:     os.Getenv("MEDIA_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("MEDIA_S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("MEDIA_PUBLIC_BASE_URL"),
			MaxImageMB:    getEnvAsInt("MEDIA_MAX_IMAGE_MB", 10),
		},
	}

	if cfg.Auth.JWTSecret == "" && cfg.App.IsDevelopment() {
		cfg.Auth.JWTSecret = "dev-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.SessionTTLHours <= 0 {
		return errors.New("AUTH_SESSION_TTL_HOURS must be positive")
	}
	if c.Auth.CookieName == "" {
		return errors.New("AUTH_COOKIE_NAME must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs in development mode. Only an
// explicit NODE_ENV/APP_ENV=development counts; an unset env is production.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, envDevelopment)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BodyLimit returns the maximum request body size in bytes.
func (a AppConfig) BodyLimit() int {
	if a.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return a.BodyLimitMB * 1024 * 1024
}

// SessionTTL is the lifetime shared by the session token and its cookie.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// LoginWindow is the period over which failed logins are counted.
func (a AuthConfig) LoginWindow() time.Duration {
	return time.Duration(a.LoginWindowMinutes) * time.Minute
}

// Enabled reports whether profile image uploads are configured.
func (m MediaConfig) Enabled() bool {
	return m.Bucket != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
