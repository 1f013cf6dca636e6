package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	// DatabaseDriver is "sqlite" or "postgres".
	DatabaseDriver string
	SQLitePath     string
	DatabaseURL    string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string

	// AuthCacheTTL bounds how long an authenticated user is served from the
	// middleware cache before being re-read from the store.
	AuthCacheTTL time.Duration

	CORSOrigins            []string
	Debug                  bool
	MaxMessagesPerHistory  int
	MaxMessageContentRunes int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppName: getEnv("APP_NAME", "devconnect API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 5000),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "devconnect.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),

		AuthCacheTTL: time.Duration(getEnvAsInt("AUTH_CACHE_TTL_SECONDS", 60)) * time.Second,

		Debug:                  getEnvAsBool("DEBUG", true),
		MaxMessagesPerHistory:  getEnvAsInt("MAX_MESSAGES_PER_HISTORY", 1000),
		MaxMessageContentRunes: getEnvAsInt("MAX_MESSAGE_CONTENT_RUNES", 5000),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		// nothing else needed
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User: url.UserPassword(
				getEnv("POSTGRES_USER", "postgres"),
				getEnv("POSTGRES_PASSWORD", "postgres"),
			),
			Host:     fmt.Sprintf("%s:%s", getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
			Path:     getEnv("POSTGRES_DB", "devconnect"),
			RawQuery: "sslmode=disable",
		}
		cfg.DatabaseURL = u.String()
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
