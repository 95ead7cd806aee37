// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const AppName = "smartmatch"

var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

type Config struct {
	AppPort              string
	AppURL               string
	DatabaseURL          string
	LogLevel             string
	RedisURL             string
	AvailabilityCacheTTL time.Duration
	WizardStateSecret    []byte
	TransitQuestion      bool
	SearchPacing         time.Duration
	PageSize             int
	LDSDKKey             string
	LDContextKind        string
	LDContextKey         string
}

// Load reads .env (if present) and then the process environment. Values
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:       withDefault(getenv("APP_PORT"), "8080"),
		AppURL:        getenv("APP_URL"),
		DatabaseURL:   getenv("DATABASE_URL"),
		LogLevel:      withDefault(getenv("LOG_LEVEL"), "info"),
		RedisURL:      getenv("REDIS_URL"),
		LDSDKKey:      getenv("LD_SDK_KEY"),
		LDContextKind: withDefault(getenv("LD_CONTEXT_KIND"), "service"),
		LDContextKey:  withDefault(getenv("LD_CONTEXT_KEY"), AppName),
	}
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	var err error
	if cfg.AvailabilityCacheTTL, err = duration(getenv, "AVAILABILITY_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchPacing, err = duration(getenv, "SEARCH_PACING", 1500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = integer(getenv, "LISTING_PAGE_SIZE", 500); err != nil {
		return nil, err
	}
	if raw := getenv("SMARTMATCH_TRANSIT_QUESTION"); raw != "" {
		if cfg.TransitQuestion, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("config: SMARTMATCH_TRANSIT_QUESTION: %w", err)
		}
	}

	// Without a configured secret, wizard tokens only survive this process.
	secret := getenv("WIZARD_STATE_SECRET")
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	cfg.WizardStateSecret = []byte(secret)

	return cfg, nil
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func integer(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
