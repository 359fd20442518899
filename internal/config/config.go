package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Upstream API.
	APIScheme  string `validate:"required,oneof=http https"`
	APIHost    string `validate:"required,hostname_port|hostname"`
	LocationID string `validate:"required,numeric"`
	VerifyTLS  bool

	// HTTPTimeout bounds each provider call (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`

	// Provider resilience.
	FetchMaxRetries    int           `validate:"gte=0,lte=10"`
	FetchRetryInterval time.Duration `validate:"gt=0"`

	// DBPath is the SQLite file holding the observation table.
	DBPath string `validate:"required"`

	// UpdateAt is the daily UTC time (HH:MM) of the scheduled update in serve mode.
	UpdateAt string `validate:"required,datetime=15:04"`

	Port  string `validate:"required,numeric"`
	Debug bool
}

// BaseURL returns scheme://host of the upstream API.
func (c *AppConfig) BaseURL() string {
	return c.APIScheme + "://" + c.APIHost
}

// Validate checks the configuration for consistency.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIScheme = strings.ToLower(getenvDefault("WEATHER_API_SCHEME", "https"))
	cfg.APIHost = getenvDefault("WEATHER_API_HOST", "metaweather.com")
	cfg.LocationID = getenvDefault("WEATHER_LOCATION_ID", "2487956")
	cfg.VerifyTLS = getenvBool("WEATHER_VERIFY_TLS", false)
	cfg.DBPath = getenvDefault("WEATHER_DB_PATH", "weather_info.db")
	cfg.UpdateAt = getenvDefault("UPDATE_AT", "06:00")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Debug = getenvBool("WEATHER_DEBUG", false)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	retries, err := getenvInt("FETCH_MAX_RETRIES", 0)
	if err != nil {
		return nil, err
	}
	cfg.FetchMaxRetries = retries

	retryInterval, err := time.ParseDuration(getenvDefault("FETCH_RETRY_INTERVAL", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_RETRY_INTERVAL: %w", err)
	}
	cfg.FetchRetryInterval = retryInterval

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
