package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret  string
	SessionTTL time.Duration

	LogLevel string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", "127.0.0.1:8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, missing("DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, missing("JWT_SECRET")
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "1h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("config: invalid SESSION_TTL %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("config: invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func missing(key string) error {
	return fmt.Errorf("config: missing env %s", key)
}
