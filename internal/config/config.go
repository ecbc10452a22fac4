package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultDatabaseURL = "foodgram.db"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
	defaultMediaDir    = "media"
	defaultMediaURL    = "/media/"
	defaultPageSize    = 6
	defaultMaxPageSize = 100
)

type Config struct {
	AppEnv      string `toml:"app_env"`
	HTTPAddr    string `toml:"http_addr"`
	DatabaseURL string `toml:"database_url"`

	JWTSecret string        `toml:"jwt_secret"`
	JWTTTL    time.Duration `toml:"-"`
	JWTTTLRaw string        `toml:"jwt_ttl"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	MediaDir string   `toml:"media_dir"`
	MediaURL string   `toml:"media_url"`
	S3       S3Config `toml:"s3"`

	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	SentryDSN          string   `toml:"sentry_dsn"`

	PageSize    int `toml:"page_size"`
	MaxPageSize int `toml:"max_page_size"`
}

// S3Config включает хранение изображений рецептов в S3-совместимом бакете.
// Пустой Bucket означает локальное хранилище в MediaDir.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
}

func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML файл из
// CONFIG_FILE (если задан), затем переменные окружения (включая .env).
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	ttl, err := time.ParseDuration(strings.TrimSpace(cfg.JWTTTLRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL value %q: %w", cfg.JWTTTLRaw, err)
	}
	cfg.JWTTTL = ttl

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		AppEnv:      "dev",
		HTTPAddr:    defaultHTTPAddr,
		DatabaseURL: defaultDatabaseURL,
		JWTSecret:   defaultJWTSecret,
		JWTTTLRaw:   defaultJWTTTL,
		LogLevel:    defaultLogLevel,
		LogFormat:   defaultLogFormat,
		MediaDir:    defaultMediaDir,
		MediaURL:    defaultMediaURL,
		PageSize:    defaultPageSize,
		MaxPageSize: defaultMaxPageSize,
	}
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = strings.ToLower(getEnv("APP_ENV", cfg.AppEnv))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTTTLRaw = getEnv("JWT_TTL", cfg.JWTTTLRaw)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.MediaDir = getEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.MediaURL = getEnv("MEDIA_URL", cfg.MediaURL)

	cfg.S3.Bucket = getEnv("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnv("S3_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnv("S3_SECRET_KEY", cfg.S3.SecretKey)
	cfg.S3.PublicURL = getEnv("S3_PUBLIC_URL", cfg.S3.PublicURL)

	cfg.SentryDSN = getEnv("SENTRY_DSN", cfg.SentryDSN)

	// пример: CORS_ALLOWED_ORIGINS=https://app.com,https://admin.app.com
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = nil
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.PageSize = getIntEnv("PAGE_SIZE", cfg.PageSize)
	cfg.MaxPageSize = getIntEnv("MAX_PAGE_SIZE", cfg.MaxPageSize)
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be > 0")
	}
	if cfg.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be > 0")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return errors.New("MAX_PAGE_SIZE must be >= PAGE_SIZE")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}
	if cfg.S3.Enabled() && strings.TrimSpace(cfg.S3.Region) == "" {
		return errors.New("S3_REGION must be set when S3_BUCKET is set")
	}

	if cfg.IsProdLike() {
		trimmed := strings.TrimSpace(cfg.JWTSecret)
		if trimmed == "" || trimmed == defaultJWTSecret {
			return errors.New("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
