package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the model backend used for concept
// extraction, question generation and short-answer grading.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one request including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also serves OpenAI-compatible APIs such as DeepSeek via
// BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the built-in defaults. Grading and generation
// calls are short, so small fast models are the default everywhere.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// providerEnv describes how one provider is configured from the
// environment.
type providerEnv struct {
	name string
	// keyVar is the STUDYLOOP_* variable holding the API key.
	keyVar string
	// standardVar is the vendor's conventional key variable, probed by
	// DiscoverConfig.
	standardVar string
	key         func(*Config) *string
	// discovered applies vendor variables beyond the key.
	discovered func(*Config)
}

// providerEnvs is in discovery priority order.
var providerEnvs = []providerEnv{
	{
		name:        ProviderGemini,
		keyVar:      "STUDYLOOP_GEMINI_API_KEY",
		standardVar: "GEMINI_API_KEY",
		key:         func(c *Config) *string { return &c.Gemini.APIKey },
	},
	{
		name:        ProviderOpenAI,
		keyVar:      "STUDYLOOP_OPENAI_API_KEY",
		standardVar: "OPENAI_API_KEY",
		key:         func(c *Config) *string { return &c.OpenAI.APIKey },
		discovered: func(c *Config) {
			setFromEnv("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
			setFromEnv("OPENAI_MODEL", &c.OpenAI.Model)
		},
	},
	{
		name:        ProviderAnthropic,
		keyVar:      "STUDYLOOP_ANTHROPIC_API_KEY",
		standardVar: "ANTHROPIC_API_KEY",
		key:         func(c *Config) *string { return &c.Anthropic.APIKey },
	},
	{
		name:        ProviderOpenRouter,
		keyVar:      "STUDYLOOP_OPENROUTER_API_KEY",
		standardVar: "OPENROUTER_API_KEY",
		key:         func(c *Config) *string { return &c.OpenRouter.APIKey },
	},
}

func envFor(name string) (providerEnv, bool) {
	for _, s := range providerEnvs {
		if s.name == name {
			return s, true
		}
	}
	return providerEnv{}, false
}

// stringVars binds STUDYLOOP_* variables to string fields.
var stringVars = map[string]func(*Config) *string{
	"STUDYLOOP_LLM_PROVIDER":       func(c *Config) *string { return &c.Provider },
	"STUDYLOOP_ANTHROPIC_API_KEY":  func(c *Config) *string { return &c.Anthropic.APIKey },
	"STUDYLOOP_ANTHROPIC_MODEL":    func(c *Config) *string { return &c.Anthropic.Model },
	"STUDYLOOP_OPENAI_API_KEY":     func(c *Config) *string { return &c.OpenAI.APIKey },
	"STUDYLOOP_OPENAI_MODEL":       func(c *Config) *string { return &c.OpenAI.Model },
	"STUDYLOOP_OPENAI_BASE_URL":    func(c *Config) *string { return &c.OpenAI.BaseURL },
	"STUDYLOOP_GEMINI_API_KEY":     func(c *Config) *string { return &c.Gemini.APIKey },
	"STUDYLOOP_GEMINI_MODEL":       func(c *Config) *string { return &c.Gemini.Model },
	"STUDYLOOP_OPENROUTER_API_KEY": func(c *Config) *string { return &c.OpenRouter.APIKey },
	"STUDYLOOP_OPENROUTER_MODEL":   func(c *Config) *string { return &c.OpenRouter.Model },
}

func setFromEnv(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// ConfigFromEnv applies STUDYLOOP_* variables on top of DefaultConfig.
// Unparseable numeric values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, field := range stringVars {
		setFromEnv(name, field(&cfg))
	}
	if n, err := strconv.Atoi(os.Getenv("STUDYLOOP_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("STUDYLOOP_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Configured reports whether STUDYLOOP_LLM_PROVIDER was set explicitly.
func Configured() bool {
	return os.Getenv("STUDYLOOP_LLM_PROVIDER") != ""
}

// DiscoverConfig returns a Config for the first provider whose standard
// API key variable is set, in the order Gemini, OpenAI, Anthropic,
// OpenRouter.
func DiscoverConfig() (Config, bool) {
	for _, pe := range providerEnvs {
		key := os.Getenv(pe.standardVar)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = pe.name
		*pe.key(&cfg) = key
		if pe.discovered != nil {
			pe.discovered(&cfg)
		}
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	pe, ok := envFor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *pe.key(&c) == "" {
		return fmt.Errorf("%s is required for the %s provider", pe.keyVar, pe.name)
	}
	return nil
}
