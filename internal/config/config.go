package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	WebPort  string
	LogLevel string

	SummarizerBaseURL        string
	SummarizerTimeoutSeconds int

	BreakerEnabled            bool
	BreakerMinRequests        int
	BreakerFailureRatio       float64
	BreakerOpenTimeoutSeconds int

	MaxUploadBytes   int64
	UIRateLimitRPS   float64
	UIRateLimitBurst int
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
// Its values replace built-in defaults; environment variables still win.
type fileConfig struct {
	WebPort  string `yaml:"web_port"`
	LogLevel string `yaml:"log_level"`

	Summarizer struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds *int   `yaml:"timeout_seconds"`
	} `yaml:"summarizer"`

	Breaker struct {
		Enabled            *bool    `yaml:"enabled"`
		MinRequests        *int     `yaml:"min_requests"`
		FailureRatio       *float64 `yaml:"failure_ratio"`
		OpenTimeoutSeconds *int     `yaml:"open_timeout_seconds"`
	} `yaml:"breaker"`

	UI struct {
		MaxUploadBytes *int64   `yaml:"max_upload_bytes"`
		RateLimitRPS   *float64 `yaml:"rate_limit_rps"`
		RateLimitBurst *int     `yaml:"rate_limit_burst"`
	} `yaml:"ui"`
}

func Load() (Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		WebPort:  mustEnv("WEB_PORT", orString(file.WebPort, "3000")),
		LogLevel: mustEnv("LOG_LEVEL", orString(file.LogLevel, "info")),

		SummarizerBaseURL:        mustEnv("SUMMARIZER_BASE_URL", orString(file.Summarizer.BaseURL, "http://localhost:8000")),
		SummarizerTimeoutSeconds: mustEnvInt("SUMMARIZER_TIMEOUT_SECONDS", or(file.Summarizer.TimeoutSeconds, 0)),

		BreakerEnabled:            mustEnvBool("BREAKER_ENABLED", or(file.Breaker.Enabled, true)),
		BreakerMinRequests:        mustEnvInt("BREAKER_MIN_REQUESTS", or(file.Breaker.MinRequests, 5)),
		BreakerFailureRatio:       mustEnvFloat("BREAKER_FAILURE_RATIO", or(file.Breaker.FailureRatio, 0.6)),
		BreakerOpenTimeoutSeconds: mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", or(file.Breaker.OpenTimeoutSeconds, 30)),

		MaxUploadBytes:   int64(mustEnvInt("MAX_UPLOAD_BYTES", int(or(file.UI.MaxUploadBytes, 32<<20)))),
		UIRateLimitRPS:   mustEnvFloat("UI_RATE_LIMIT_RPS", or(file.UI.RateLimitRPS, 5)),
		UIRateLimitBurst: mustEnvInt("UI_RATE_LIMIT_BURST", or(file.UI.RateLimitBurst, 10)),
	}, nil
}

func (c Config) SummarizerTimeout() time.Duration {
	if c.SummarizerTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SummarizerTimeoutSeconds) * time.Second
}

func (c Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutSeconds) * time.Second
}

func readFile(path string) (fileConfig, error) {
	var out fileConfig
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return out, nil
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func or[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
