package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings shared by the portal processes.
type Config struct {
	Port              string
	Environment       string
	LogLevel          string
	OTLPEndpoint      string
	OTLPInsecure      bool
	PetcareBaseURL    string
	PetcareToken      string
	PetcareTimeout    time.Duration
	PostgresDSN       string
	RedisAddr         string
	CartCacheTTL      time.Duration
	CartIdleTTL       time.Duration
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads defaults, then an optional .env file, then the environment, and validates the result.
func LoadConfig() (Config, error) {
	return loadConfig(viper.New(), ".", "..", "../..")
}

func loadConfig(v *viper.Viper, searchPaths ...string) (Config, error) {
	v.SetConfigType("env")
	v.SetConfigName(".env")
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("PETCARE_API_TIMEOUT_SECONDS", 10)
	v.SetDefault("CART_CACHE_TTL_MINUTES", 15)
	v.SetDefault("CART_IDLE_TTL_HOURS", 72)
	v.SetDefault("TEMPORAL_ADDRESS", client.DefaultHostPort)
	v.SetDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	v.SetDefault("TEMPORAL_DISABLED", false)
	for _, key := range []string{"PETCARE_API_BASE_URL", "PETCARE_API_TOKEN", "POSTGRES_DSN", "REDIS_ADDR", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		v.SetDefault(key, "")
	}
	v.AutomaticEnv()

	if len(searchPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := Config{
		Port:              strings.TrimSpace(v.GetString("PORT")),
		Environment:       strings.TrimSpace(v.GetString("ENVIRONMENT")),
		LogLevel:          strings.TrimSpace(v.GetString("LOG_LEVEL")),
		OTLPEndpoint:      strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:      v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		PetcareBaseURL:    strings.TrimSpace(v.GetString("PETCARE_API_BASE_URL")),
		PetcareToken:      strings.TrimSpace(v.GetString("PETCARE_API_TOKEN")),
		PostgresDSN:       strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(v.GetString("REDIS_ADDR")),
		TemporalAddress:   strings.TrimSpace(v.GetString("TEMPORAL_ADDRESS")),
		TemporalNamespace: strings.TrimSpace(v.GetString("TEMPORAL_NAMESPACE")),
		TemporalDisabled:  v.GetBool("TEMPORAL_DISABLED"),
	}

	var err error
	if cfg.PetcareTimeout, err = positive(v, "PETCARE_API_TIMEOUT_SECONDS", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CartCacheTTL, err = positive(v, "CART_CACHE_TTL_MINUTES", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CartIdleTTL, err = positive(v, "CART_IDLE_TTL_HOURS", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PetcareBaseURL == "" {
		return Config{}, errors.New("PETCARE_API_BASE_URL is required")
	}
	return cfg, nil
}

func positive(v *viper.Viper, key string, unit time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n := v.GetInt(key)
	if n <= 0 || raw != fmt.Sprint(n) {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(n) * unit, nil
}
