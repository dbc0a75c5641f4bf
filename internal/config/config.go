package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           int
	DatabaseURL    string
	LogLevel       string
	MigrateOnStart bool

	LLMProvider     string
	LLMBaseURL      string
	LLMMaxTokens    int
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	NatsURL   string
	NatsToken string

	OTLPEndpoint string
	CORSOrigins  []string
}

func Load() Config {
	return Config{
		Port:            envInt("CSOPT_PORT", 8760),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		MigrateOnStart:  envBool("CSOPT_MIGRATE_ON_START", false),
		LLMProvider:     strings.ToLower(envStr("LLM_PROVIDER", "anthropic")),
		LLMBaseURL:      envStr("LLM_BASE_URL", ""),
		LLMMaxTokens:    envInt("LLM_MAX_TOKENS", 4096),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o"),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		OTLPEndpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSOrigins:     envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// LLMAPIKey returns the key for the configured provider.
func (c Config) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

// LLMModel returns the model for the configured provider.
func (c Config) LLMModel() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIModel
	}
	return c.AnthropicModel
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
