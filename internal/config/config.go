package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the seoscout server and worker.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Worker    WorkerConfig
	Fetch     FetchConfig
	Audit     AuditConfig
	AI        AIConfig
	Payment   PaymentConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port        int
	Env         string
	MetricsAddr string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type QueueConfig struct {
	KeyPrefix         string
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	PublishRetries    int
	PublishBackoff    time.Duration
	MaxAttempts       int
	RetryBackoffBase  time.Duration
	RetryBackoffMax   time.Duration
}

type WorkerConfig struct {
	Concurrency int
	JobTimeout  time.Duration
}

type FetchConfig struct {
	Engine           string
	BrowserlessURL   string
	BrowserlessToken string
	Timeout          time.Duration
	MaxBodyBytes     int64
	UserAgent        string
	CacheTTL         time.Duration
}

type AuditConfig struct {
	DefaultMaxPages int
	MaxPagesLimit   int
	TimingSamples   int
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type PaymentConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Amount  float64
	Timeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type AuthConfig struct {
	AdminAPIKey string
}

var validProviders = map[string]bool{
	"ollama":    true,
	"openai":    true,
	"anthropic": true,
}

var validFetchEngines = map[string]bool{
	"http":        true,
	"browserless": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        envInt("SEOSCOUT_PORT", 8080),
			Env:         envString("SEOSCOUT_ENV", "development"),
			MetricsAddr: envString("METRICS_ADDR", ":9090"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Queue: QueueConfig{
			KeyPrefix:         envString("QUEUE_KEY_PREFIX", "seoscout:audits"),
			VisibilityTimeout: envDuration("QUEUE_VISIBILITY_TIMEOUT", 5*time.Minute),
			PollInterval:      envDuration("QUEUE_POLL_INTERVAL", 1*time.Second),
			PublishRetries:    envInt("QUEUE_PUBLISH_RETRIES", 3),
			PublishBackoff:    envDuration("QUEUE_PUBLISH_BACKOFF", 500*time.Millisecond),
			MaxAttempts:       envInt("QUEUE_MAX_ATTEMPTS", 3),
			RetryBackoffBase:  envDuration("QUEUE_RETRY_BACKOFF_BASE", 5*time.Second),
			RetryBackoffMax:   envDuration("QUEUE_RETRY_BACKOFF_MAX", 2*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency: envInt("WORKER_CONCURRENCY", 2),
			JobTimeout:  envDuration("WORKER_JOB_TIMEOUT", 10*time.Minute),
		},
		Fetch: FetchConfig{
			Engine:           envString("FETCH_ENGINE", "http"),
			BrowserlessURL:   envString("BROWSERLESS_URL", "https://chrome.browserless.io"),
			BrowserlessToken: os.Getenv("BROWSERLESS_TOKEN"),
			Timeout:          envDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxBodyBytes:     int64(envInt("FETCH_MAX_BODY_BYTES", 10*1024*1024)),
			UserAgent:        envString("FETCH_USER_AGENT", "seoscout/1.0 (+https://seoscout.dev/bot)"),
			CacheTTL:         envDuration("FETCH_CACHE_TTL", 5*time.Minute),
		},
		Audit: AuditConfig{
			DefaultMaxPages: envInt("AUDIT_DEFAULT_MAX_PAGES", 50),
			MaxPagesLimit:   envInt("AUDIT_MAX_PAGES_LIMIT", 100),
			TimingSamples:   envInt("AUDIT_TIMING_SAMPLES", 3),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			},
		},
		Payment: PaymentConfig{
			Enabled: envBool("PAYMENT_ENABLED", false),
			BaseURL: os.Getenv("PAYMENT_SERVICE_URL"),
			APIKey:  os.Getenv("PAYMENT_API_KEY"),
			Amount:  envFloat("PAYMENT_AMOUNT", 5.0),
			Timeout: envDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Auth: AuthConfig{
			AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validFetchEngines[c.Fetch.Engine] {
		return fmt.Errorf("FETCH_ENGINE must be one of http, browserless; got %q", c.Fetch.Engine)
	}
	if c.Fetch.Engine == "browserless" {
		if c.Fetch.BrowserlessURL == "" {
			return fmt.Errorf("BROWSERLESS_URL is required when FETCH_ENGINE is browserless")
		}
		if !strings.HasPrefix(c.Fetch.BrowserlessURL, "http://") && !strings.HasPrefix(c.Fetch.BrowserlessURL, "https://") {
			return fmt.Errorf("BROWSERLESS_URL must start with http:// or https://, got %q", c.Fetch.BrowserlessURL)
		}
		if c.Fetch.BrowserlessToken == "" {
			return fmt.Errorf("BROWSERLESS_TOKEN is required when FETCH_ENGINE is browserless")
		}
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, openai, anthropic; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}

	if c.Payment.Enabled {
		if c.Payment.BaseURL == "" {
			return fmt.Errorf("PAYMENT_SERVICE_URL is required when PAYMENT_ENABLED is true")
		}
		if !strings.HasPrefix(c.Payment.BaseURL, "http://") && !strings.HasPrefix(c.Payment.BaseURL, "https://") {
			return fmt.Errorf("PAYMENT_SERVICE_URL must start with http:// or https://, got %q", c.Payment.BaseURL)
		}
		if c.Payment.APIKey == "" {
			return fmt.Errorf("PAYMENT_API_KEY is required when PAYMENT_ENABLED is true")
		}
	}

	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1, got %d", c.Queue.MaxAttempts)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.Worker.Concurrency)
	}
	if c.Audit.DefaultMaxPages < 1 || c.Audit.DefaultMaxPages > c.Audit.MaxPagesLimit {
		return fmt.Errorf("AUDIT_DEFAULT_MAX_PAGES must be between 1 and %d, got %d",
			c.Audit.MaxPagesLimit, c.Audit.DefaultMaxPages)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
