// Package config reads the server settings from the environment, after
// loading a .env file when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultSessionMaxAge  = 24 * time.Hour
	defaultLLMTimeout     = 3 * time.Minute
	defaultMaxUploadBytes = 32 << 20
)

// R2 holds the Cloudflare R2 bucket settings. The source is disabled unless
// every field is set.
type R2 struct {
	AccountID       string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func (r R2) Enabled() bool {
	return r.AccountID != "" && r.Bucket != "" && r.AccessKeyID != "" && r.SecretAccessKey != ""
}

type Config struct {
	Port          string
	Env           string
	SessionSecret string
	SessionMaxAge time.Duration

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FrontendURL string

	GroqAPIKey     string
	GeminiAPIKey   string
	DefaultModel   string
	LLMTimeout     time.Duration
	MaxUploadBytes int64

	R2 R2

	DiscordWebhookURL string
}

// Production reports whether APP_ENV selects production mode.
func (c *Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Load reads .env (a missing file is fine) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              env("PORT", defaultPort),
		Env:               env("APP_ENV", "dev"),
		SessionSecret:     env("SESSION_SECRET", ""),
		DatabaseURL:       env("DATABASE_URL", ""),
		RedisAddr:         env("REDIS_ADDR", ""),
		RedisPassword:     env("REDIS_PASSWORD", ""),
		FrontendURL:       env("FRONTEND_URL", ""),
		GroqAPIKey:        env("GROQ_API_KEY", ""),
		GeminiAPIKey:      env("GEMINI_API_KEY", ""),
		DefaultModel:      env("DEFAULT_MODEL", ""),
		DiscordWebhookURL: env("DISCORD_WEBHOOK_URL", ""),
		R2: R2{
			AccountID:       env("CLOUDFLARE_ACCOUNT_ID", ""),
			Bucket:          env("R2_BUCKET_NAME", ""),
			AccessKeyID:     env("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("R2_SECRET_ACCESS_KEY", ""),
		},
	}

	var err error
	if cfg.SessionMaxAge, err = duration(env("SESSION_MAX_AGE", ""), defaultSessionMaxAge); err != nil {
		return nil, fmt.Errorf("SESSION_MAX_AGE: %w", err)
	}
	if cfg.LLMTimeout, err = duration(env("LLM_TIMEOUT", ""), defaultLLMTimeout); err != nil {
		return nil, fmt.Errorf("LLM_TIMEOUT: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(env("MAX_UPLOAD_BYTES", strconv.Itoa(defaultMaxUploadBytes)), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	if cfg.SessionSecret == "" && cfg.Production() {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}
	return cfg, nil
}

func duration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}
