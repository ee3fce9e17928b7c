package llm

import (
	"fmt"
	"os"
	"time"
)

// ProviderMock serves canned responses and needs no API key.
const ProviderMock = "mock"

// Config holds all LLM provider configuration. It is loaded from the
// "llm" section of the application config.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock".
	// Empty disables AI features; "auto" probes the standard API key
	// variables (see DiscoverConfig).
	Provider string `koanf:"provider"`

	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`
	Retry      RetryConfig      `koanf:"retry"`

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration `koanf:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier"`
}

// DefaultConfig returns a Config with AI features disabled and sensible
// per-provider defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// Enabled reports whether a provider is configured.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// DiscoverConfig probes standard API key env vars in priority order
// (Anthropic, OpenAI, Gemini, OpenRouter) and fills in c for the first
// provider whose key is found. Returns false if none is found.
func (c Config) DiscoverConfig() (Config, bool) {
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Provider = ProviderAnthropic
		c.Anthropic.APIKey = k
		return c, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.Provider = ProviderOpenAI
		c.OpenAI.APIKey = k
		return c, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Provider = ProviderGemini
		c.Gemini.APIKey = k
		return c, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		c.Provider = ProviderOpenRouter
		c.OpenRouter.APIKey = k
		return c, true
	}
	return c, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderMock:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ZIRAK_LLM__ANTHROPIC__API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("ZIRAK_LLM__OPENAI__API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("ZIRAK_LLM__GEMINI__API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("ZIRAK_LLM__OPENROUTER__API_KEY is required for the openrouter provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
