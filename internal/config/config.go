// Package config loads service settings from defaults, an optional YAML file
// and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	NATS      NATSConfig      `yaml:"nats"`
	HTTP      HTTPConfig      `yaml:"http"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Assistant AssistantConfig `yaml:"assistant"`
	Log       LogConfig       `yaml:"log"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
}

type NATSConfig struct {
	URL            string        `yaml:"url"`
	RequestSubject string        `yaml:"request_subject"`
	Timeout        time.Duration `yaml:"timeout"`
}

type HTTPConfig struct {
	Addr             string        `yaml:"addr"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type AnthropicConfig struct {
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	FallbackModel string        `yaml:"fallback_model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxTokens     int           `yaml:"max_tokens"`
	Temperature   float64       `yaml:"temperature"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type RedisConfig struct {
	URL       string        `yaml:"url"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// DatabaseConfig points the data loader at the logistics database. Queries
// maps a domain name to the SQL run for it; missing domains use the built-in
// queries.
type DatabaseConfig struct {
	Driver  string            `yaml:"driver"` // postgres or sqlite
	DSN     string            `yaml:"dsn"`
	MaxRows int               `yaml:"max_rows"`
	Queries map[string]string `yaml:"queries"`
}

type AssistantConfig struct {
	MaxReprocessAttempts int `yaml:"max_reprocess_attempts"`
	MaxQueryRunes        int `yaml:"max_query_runes"`
	MaxContextBytes      int `yaml:"max_context_bytes"`
	MaxResponseBytes     int `yaml:"max_response_bytes"`
	HistoryWindow        int `yaml:"history_window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, when set, over the defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Service: ServiceConfig{Name: "freteai-assistente"},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			RequestSubject: "frete.assistente.chat",
			Timeout:        30 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:             ":8080",
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     60 * time.Second,
			RequestTimeout:   45 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Anthropic: AnthropicConfig{
			Model:       "claude-3-5-sonnet-20241022",
			Timeout:     30 * time.Second,
			MaxTokens:   1024,
			Temperature: 0.1,
			MaxRetries:  2,
			RetryDelay:  500 * time.Millisecond,
		},
		Redis: RedisConfig{
			URL:       "redis://localhost:6379/0",
			TTL:       30 * time.Minute,
			KeyPrefix: "freteai:",
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			MaxRows: 50,
		},
		Assistant: AssistantConfig{
			MaxReprocessAttempts: 2,
			MaxQueryRunes:        2000,
			MaxContextBytes:      256 << 10,
			MaxResponseBytes:     32 << 10,
			HistoryWindow:        10,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.NATS.RequestSubject == "" {
		errs = append(errs, errors.New("nats.request_subject is required"))
	}
	if c.Anthropic.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("anthropic.max_tokens must be positive, got %d", c.Anthropic.MaxTokens))
	}
	if c.Anthropic.Temperature < 0 || c.Anthropic.Temperature > 1 {
		errs = append(errs, fmt.Errorf("anthropic.temperature must be within [0, 1], got %g", c.Anthropic.Temperature))
	}
	if c.Anthropic.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("anthropic.max_retries must not be negative, got %d", c.Anthropic.MaxRetries))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("invalid database driver: %s", c.Database.Driver))
	}
	if c.Database.MaxRows <= 0 {
		errs = append(errs, fmt.Errorf("database.max_rows must be positive, got %d", c.Database.MaxRows))
	}
	if c.Assistant.MaxReprocessAttempts < 0 {
		errs = append(errs, fmt.Errorf("assistant.max_reprocess_attempts must not be negative, got %d", c.Assistant.MaxReprocessAttempts))
	}
	if c.Assistant.MaxQueryRunes <= 0 {
		errs = append(errs, fmt.Errorf("assistant.max_query_runes must be positive, got %d", c.Assistant.MaxQueryRunes))
	}
	if c.Assistant.HistoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("assistant.history_window must be positive, got %d", c.Assistant.HistoryWindow))
	}
	if c.Redis.TTL <= 0 {
		errs = append(errs, fmt.Errorf("redis.ttl must be positive, got %s", c.Redis.TTL))
	}

	return errors.Join(errs...)
}

func applyEnv(c *Config) {
	c.Service.Name = getEnv("SERVICE_NAME", c.Service.Name)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.RequestSubject = getEnv("NATS_REQUEST_SUBJECT", c.NATS.RequestSubject)
	c.NATS.Timeout = getDurationEnv("NATS_TIMEOUT", c.NATS.Timeout)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.RequestTimeout = getDurationEnv("HTTP_REQUEST_TIMEOUT", c.HTTP.RequestTimeout)

	c.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", c.Anthropic.APIKey)
	c.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.Anthropic.Model)
	c.Anthropic.FallbackModel = getEnv("ANTHROPIC_FALLBACK_MODEL", c.Anthropic.FallbackModel)
	c.Anthropic.Timeout = getDurationEnv("ANTHROPIC_TIMEOUT", c.Anthropic.Timeout)
	c.Anthropic.MaxTokens = getIntEnv("ANTHROPIC_MAX_TOKENS", c.Anthropic.MaxTokens)
	c.Anthropic.MaxRetries = getIntEnv("ANTHROPIC_MAX_RETRIES", c.Anthropic.MaxRetries)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.TTL = getDurationEnv("REDIS_TTL", c.Redis.TTL)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			c.Database.Driver = "sqlite"
			c.Database.DSN = strings.TrimPrefix(v, "sqlite:")
		} else {
			c.Database.Driver = "postgres"
			c.Database.DSN = v
		}
	}
	c.Database.MaxRows = getIntEnv("DATABASE_MAX_ROWS", c.Database.MaxRows)

	c.Assistant.MaxReprocessAttempts = getIntEnv("MAX_REPROCESS_ATTEMPTS", c.Assistant.MaxReprocessAttempts)
	c.Assistant.MaxQueryRunes = getIntEnv("MAX_QUERY_RUNES", c.Assistant.MaxQueryRunes)
	c.Assistant.HistoryWindow = getIntEnv("HISTORY_WINDOW", c.Assistant.HistoryWindow)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
