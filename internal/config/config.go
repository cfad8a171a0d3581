package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Reference document
	DocumentPath  string `env:"DOCUMENT_PATH" envDefault:"data/regulations.pdf"`
	WatchDocument bool   `env:"WATCH_DOCUMENT" envDefault:"true"`

	// Context selection
	ContextPolicy    string `env:"CONTEXT_POLICY" envDefault:"relevance"` // "full", "relevance" or "remote"
	TopK             int    `env:"TOP_K" envDefault:"5"`
	FrontMatterPages int    `env:"FRONT_MATTER_PAGES" envDefault:"3"`

	// LLM
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "stub" (echoes the prompt)
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	LLMModels       []string      `env:"LLM_MODELS" envSeparator:"," envDefault:"gpt-4o-mini,gpt-4o,gpt-3.5-turbo"`
	ProbeModels     bool          `env:"PROBE_MODELS" envDefault:"false"`
	MaxOutputTokens int           `env:"MAX_OUTPUT_TOKENS" envDefault:"1024"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	RetryAttempts   int           `env:"RETRY_ATTEMPTS" envDefault:"1"`
	RetryDelay      time.Duration `env:"RETRY_DELAY" envDefault:"10s"`

	// Sessions
	SessionProvider string        `env:"SESSION_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Uploaded-file reference cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	FileRefTTL    time.Duration `env:"FILE_REF_TTL" envDefault:"48h"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	NATSURL        string `env:"NATS_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
