package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel            OTelConfig
	WordPress       WordPressConfig
	LIFF            LIFFConfig
	Cache           CacheConfig
	Env             string
	Port            string
	TraceHeaderName string
	NodeID          int64 // snowflake node for request ids
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	InstanceID     string
	Environment    string
	SampleRatio    float64 // fraction of new root traces kept; parents decide otherwise
}

type WordPressConfig struct {
	BaseURL      string // site root, e.g. https://example.com/pken-dev_vote
	SharedSecret string // HMAC key for X-Signature
	Timeout      time.Duration
}

type LIFFConfig struct {
	ID       string
	Disabled bool
}

type CacheConfig struct {
	RedisURL   string
	HistoryTTL time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
)

// Load loads configuration from environment variables.
// In development, it loads .env.<service> and falls back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("SURVEY_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:             getEnv("SURVEY_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		TraceHeaderName: getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		NodeID:          getEnvInt("SNOWFLAKE_NODE_ID", 1),
		OTel: OTelConfig{
			Endpoint:       strings.TrimRight(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "/"),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "survey-gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			InstanceID:     getEnv("OTEL_SERVICE_INSTANCE_ID", hostname()),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		WordPress: WordPressConfig{
			BaseURL:      strings.TrimRight(getEnv("WP_API_BASE", ""), "/"),
			SharedSecret: getEnv("WP_SHARED_SECRET", ""),
			Timeout:      getEnvSeconds("WP_TIMEOUT", 10*time.Second),
		},
		LIFF: LIFFConfig{
			ID:       getEnv("LIFF_ID", ""),
			Disabled: getEnvBool("LIFF_DISABLED", false),
		},
		Cache: CacheConfig{
			RedisURL:   getEnv("REDIS_URL", ""),
			HistoryTTL: getEnvSeconds("HISTORY_CACHE_TTL", 60*time.Second),
		},
	}

	cfg.OTel.Environment = cfg.Env

	if cfg.OTel.SampleRatio < 0 || cfg.OTel.SampleRatio > 1 {
		return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0, 1], got %v", cfg.OTel.SampleRatio)
	}

	if cfg.WordPress.BaseURL == "" {
		return Config{}, fmt.Errorf("WP_API_BASE is required")
	}

	if cfg.IsProduction() && cfg.WordPress.SharedSecret == "" {
		return Config{}, fmt.Errorf("WP_SHARED_SECRET is required in production")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != "" && c.HistoryTTL > 0
}

// Enabled is false when LIFF is switched off or no real LIFF ID is set;
// the client then runs with a mock profile.
func (c LIFFConfig) Enabled() bool {
	return !c.Disabled && c.ID != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
