package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearLLMEnv blanks every variable the config layer reads.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for name := range stringVars {
		t.Setenv(name, "")
	}
	for _, pe := range providerEnvs {
		t.Setenv(pe.standardVar, "")
	}
	for _, name := range []string{"OPENAI_BASE_URL", "OPENAI_MODEL", "STUDYLOOP_LLM_MAX_ATTEMPTS", "STUDYLOOP_LLM_TIMEOUT"} {
		t.Setenv(name, "")
	}
}

func TestDiscoverConfig_Priority(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	t.Setenv("OPENAI_MODEL", "deepseek-chat")

	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-oai", cfg.OpenAI.APIKey)
	assert.Equal(t, "deepseek-chat", cfg.OpenAI.Model)
	assert.Empty(t, cfg.Anthropic.APIKey)
}

func TestDiscoverConfig_None(t *testing.T) {
	clearLLMEnv(t)
	_, ok := DiscoverConfig()
	assert.False(t, ok)

	_, err := ResolveConfig()
	assert.Error(t, err)
}

func TestConfigFromEnv_InvalidNumbersIgnored(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("STUDYLOOP_LLM_MAX_ATTEMPTS", "many")
	t.Setenv("STUDYLOOP_LLM_TIMEOUT", "-5s")
	t.Setenv("STUDYLOOP_GEMINI_MODEL", "gemini-pro")

	cfg := ConfigFromEnv()
	def := DefaultConfig()
	assert.Equal(t, def.Retry.MaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, def.Timeout, cfg.Timeout)
	assert.Equal(t, "gemini-pro", cfg.Gemini.Model)
}

func TestValidate_NamesKeyVariable(t *testing.T) {
	err := Config{Provider: ProviderGemini}.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "STUDYLOOP_GEMINI_API_KEY"))
}
