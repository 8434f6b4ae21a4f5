// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// HTTP API
	APIPort        int      `env:"API_PORT" envDefault:"8081"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Health/metrics server, runs alongside every mode
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// Telegram
	BotToken string `env:"BOT_TOKEN"`

	// OpenAI assistant
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	OpenAIModel  string  `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	RateLimitRPS int     `env:"RATE_LIMIT_RPS" envDefault:"1"`
	Temperature  float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.8"`
	MaxTokens    int     `env:"OPENAI_MAX_TOKENS" envDefault:"1000"`

	// WhatsApp relay (Lambda)
	WhatsAppLambdaURL string        `env:"WSP_LAMBDA_URL"`
	WhatsAppTimeout   time.Duration `env:"WSP_TIMEOUT" envDefault:"15s"`

	// ElevenLabs outbound calls
	ElevenLabsAPIKey       string        `env:"ELEVENLABS_API_KEY"`
	ElevenLabsAgentID      string        `env:"ELEVENLABS_AGENT_ID"`
	ElevenLabsAgentPhoneID string        `env:"ELEVENLABS_AGENT_PHONE_ID"`
	ElevenLabsBaseURL      string        `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	ElevenLabsTimeout      time.Duration `env:"ELEVENLABS_TIMEOUT" envDefault:"30s"`

	// Mediation center identity used in reminders and call scripts
	CenterName string `env:"CENTER_NAME"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
