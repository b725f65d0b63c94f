package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SSO      SSOConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the domain registry.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration for the run store.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// SSOConfig holds cross-domain propagation configuration.
type SSOConfig struct {
	// SecretOverride is the externally configured signing secret.
	// Values shorter than 32 bytes are ignored and a file-backed secret
	// is generated instead.
	SecretOverride string

	// SecretFile is where a generated secret is persisted.
	SecretFile string

	// SessionCookie is the name of the session cookie set/cleared on
	// target domains. The signing key is derived from it.
	SessionCookie string

	// RootDomain, when set, scopes a secondary cookie clear on logout
	// for split cookie configurations.
	RootDomain string

	// URLSuffix is the friendly-URL suffix stripped before matching the
	// sync endpoints (e.g. ".html").
	URLSuffix string

	RunTTL   time.Duration
	TokenTTL time.Duration

	SecureCookies bool
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level       string
	Environment string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "domainsync"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "domainsync"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		SSO: SSOConfig{
			SecretOverride: getEnv("SSO_SECRET", ""),
			SecretFile:     getEnv("SSO_SECRET_FILE", "./data/sso/secret.key"),
			SessionCookie:  getEnv("SSO_SESSION_COOKIE", "ms_session"),
			RootDomain:     getEnv("SSO_SESSION_ROOT_DOMAIN", ""),
			URLSuffix:      getEnv("SSO_URL_SUFFIX", ""),
			RunTTL:         getEnvDuration("SSO_RUN_TTL", 300*time.Second),
			TokenTTL:       getEnvDuration("SSO_TOKEN_TTL", 180*time.Second),
			SecureCookies:  getEnvBool("SSO_SECURE_COOKIES", true),
		},
		Security: SecurityConfig{
			RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 200),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("LOG_ENV", "development"),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
