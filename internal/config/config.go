package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"support-chat/internal/llm"
	"support-chat/internal/storage"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"5000"`
	Root string `env:"ROOT" envDefault:"./support-chat"`

	DatabaseURL  string `env:"DATABASE_URL"`
	CorpusSource string `env:"CORPUS_SOURCE" envDefault:"./docs.json"`

	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey    string        `env:"LLM_API_KEY"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	LLMModel     string        `env:"LLM_MODEL"`
	LLMBaseURL   string        `env:"LLM_BASE_URL"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"50s"`

	HistoryWindow   int           `env:"HISTORY_WINDOW" envDefault:"10"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"10"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

// Load reads .env from the working directory if present, then parses the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using environment only")
	}
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderLangchain:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER '%s'", c.LLMProvider))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	if c.HistoryWindow <= 0 {
		errs = append(errs, errors.New("HISTORY_WINDOW must be positive"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}

	return errors.Join(errs...)
}

// APIKey prefers LLM_API_KEY and falls back to GEMINI_API_KEY.
func (c *Config) APIKey() string {
	if c.LLMAPIKey != "" {
		return c.LLMAPIKey
	}
	return c.GeminiAPIKey
}

func (c *Config) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider: c.LLMProvider,
		APIKey:   c.APIKey(),
		Model:    c.LLMModel,
		BaseURL:  c.LLMBaseURL,
	}
}

func (c *Config) S3Config() *storage.S3ProviderConfig {
	return &storage.S3ProviderConfig{
		S3EndpointURL:     c.S3EndpointURL,
		S3AccessKeyID:     c.S3AccessKeyID,
		S3SecretAccessKey: c.S3SecretAccessKey,
		S3Region:          c.S3Region,
	}
}

func (c *Config) SQLitePath() string {
	return filepath.Join(c.Root, "db", "chat.db")
}

func (c *Config) LogFile() string {
	return filepath.Join(c.Root, "support-chat.log")
}
