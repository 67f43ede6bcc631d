// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"dev"`
	Port    int    `env:"PORT" envDefault:"8080"`
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`

	// AIProvider selects the chat backend: openrouter, gemini, or stub.
	AIProvider        string        `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string        `env:"OPENROUTER_MODEL" envDefault:"google/gemini-2.0-flash-exp:free"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"Job Application Assistant"`
	ChatTimeout       time.Duration `env:"CHAT_TIMEOUT" envDefault:"120s"`

	// TikaURL specifies the base URL for the Apache Tika server used for
	// resume text extraction (PDF/DOCX).
	TikaURL string `env:"TIKA_URL" envDefault:"http://tika:9998"`

	// Scraper settings. ScrapeMinBlockLen is the minimum character count a
	// selector-matched block must have before it wins over the fallback.
	ScrapeTimeout     time.Duration `env:"SCRAPE_TIMEOUT" envDefault:"30s"`
	ScrapeMinBlockLen int           `env:"SCRAPE_MIN_BLOCK_LEN" envDefault:"100"`
	ScrapeUserAgent   string        `env:"SCRAPE_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

	// PersonalResumePath is the flat file holding the saved personal resume
	// record. Last write wins; no versioning.
	PersonalResumePath string `env:"PERSONAL_RESUME_PATH" envDefault:"personal_resume_data.json"`

	// TaskTimeout bounds one background extraction or match run end to end.
	TaskTimeout time.Duration `env:"TASK_TIMEOUT" envDefault:"300s"`

	// Prompt budgeting: source text beyond this many tokens is truncated
	// before templating.
	MaxPromptTokens int    `env:"MAX_PROMPT_TOKENS" envDefault:"24000"`
	TokenizerModel  string `env:"TOKENIZER_MODEL" envDefault:"gpt-3.5-turbo"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"job-assistant"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
