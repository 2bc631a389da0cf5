package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds every setting of the service and the CLI. Values come from
// app.env in the config path, overridden by environment variables.
type Config struct {
	Environment       string `mapstructure:"ENVIRONMENT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	HTTPServerAddress string `mapstructure:"HTTP_SERVER_ADDRESS"`

	RoutingProvider      string  `mapstructure:"ROUTING_PROVIDER"`
	ValhallaURL          string  `mapstructure:"VALHALLA_URL"`
	NominatimURL         string  `mapstructure:"NOMINATIM_URL"`
	NominatimRatePerSec  float64 `mapstructure:"NOMINATIM_RATE_PER_SEC"`
	UserAgent            string  `mapstructure:"USER_AGENT"`
	GoogleAPIKey         string  `mapstructure:"GOOGLE_API_KEY"`
	GoogleBaseURL        string  `mapstructure:"GOOGLE_BASE_URL"`
	ORSAPIKey            string  `mapstructure:"ORS_API_KEY"`
	ORSBaseURL           string  `mapstructure:"ORS_BASE_URL"`
	ORSCountry           string  `mapstructure:"ORS_COUNTRY"`
	OfflineGazetteerPath string  `mapstructure:"OFFLINE_GAZETTEER_PATH"`
	Timezone             string  `mapstructure:"TIMEZONE"`

	CacheBackend  string        `mapstructure:"CACHE_BACKEND"`
	CachePath     string        `mapstructure:"CACHE_PATH"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	CacheTimeout  time.Duration `mapstructure:"CACHE_TIMEOUT"`

	ProviderTimeout    time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	ScoringConcurrency int           `mapstructure:"SCORING_CONCURRENCY"`
	DefaultProfile     string        `mapstructure:"DEFAULT_PROFILE"`
	DestinationsPath   string        `mapstructure:"DESTINATIONS_PATH"`
	OriginsPath        string        `mapstructure:"ORIGINS_PATH"`
	LocationsDBPath    string        `mapstructure:"LOCATIONS_DB_PATH"`
	AllowedOrigins     []string      `mapstructure:"ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"ENVIRONMENT":            "development",
	"LOG_LEVEL":              "info",
	"HTTP_SERVER_ADDRESS":    ":8080",
	"ROUTING_PROVIDER":       "valhalla",
	"VALHALLA_URL":           "http://[::1]:9000/valhalla",
	"NOMINATIM_URL":          "https://nominatim.openstreetmap.org",
	"NOMINATIM_RATE_PER_SEC": 1.0,
	"USER_AGENT":             "homerank/1.0",
	"GOOGLE_API_KEY":         "",
	"GOOGLE_BASE_URL":        "https://maps.googleapis.com",
	"ORS_API_KEY":            "",
	"ORS_BASE_URL":           "https://api.openrouteservice.org",
	"ORS_COUNTRY":            "",
	"OFFLINE_GAZETTEER_PATH": "",
	"TIMEZONE":               "Local",
	"CACHE_BACKEND":          "sqlite",
	"CACHE_PATH":             "data/cache.db",
	"DATABASE_URL":           "",
	"REDIS_ADDRESS":          "localhost:6379",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"CACHE_TTL":              "0s",
	"CACHE_TIMEOUT":          "2s",
	"PROVIDER_TIMEOUT":       "30s",
	"SCORING_CONCURRENCY":    4,
	"DEFAULT_PROFILE":        "auto",
	"DESTINATIONS_PATH":      "data/destinations.json",
	"ORIGINS_PATH":           "data/origins.json",
	"LOCATIONS_DB_PATH":      "",
	"ALLOWED_ORIGINS":        "",
}

// Load reads app.env from path (if present) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("load config: decode: %w", err)
	}

	cfg.RedisPassword = trimOptionalQuotes(cfg.RedisPassword)
	cfg.AllowedOrigins = compact(cfg.AllowedOrigins)
	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\"")
	s = strings.TrimSuffix(s, "\"")
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
