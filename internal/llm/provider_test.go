package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMockProvider_FIFOResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"concepts":["entropy"]}`), Usage: Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16}},
		MockResponse{Content: json.RawMessage(`{"score":80}`)},
	)

	first, err := mock.Generate(context.Background(), Request{Messages: UserMessage("extract")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"concepts":["entropy"]}` {
		t.Fatalf("first content = %s", first.Content)
	}
	if first.Usage.TotalTokens != 16 {
		t.Fatalf("expected 16 total tokens, got %d", first.Usage.TotalTokens)
	}

	second, err := mock.Generate(context.Background(), Request{Messages: UserMessage("grade")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `{"score":80}` {
		t.Fatalf("second content = %s", second.Content)
	}
	if mock.Remaining() != 0 {
		t.Fatalf("expected empty queue, %d left", mock.Remaining())
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestMockProvider_EnforcesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"name":"x"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: testSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestMockProvider_StreamDeltas(t *testing.T) {
	content := `{"statement":"Gradient descent minimises a loss function.","correct_answer":"True"}`
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(content)})

	var parts []string
	resp, err := mock.Stream(context.Background(), Request{}, func(d string) {
		parts = append(parts, d)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) < 2 {
		t.Fatalf("expected several deltas, got %d", len(parts))
	}
	if got := strings.Join(parts, ""); got != content {
		t.Fatalf("joined deltas = %q, want %q", got, content)
	}
	if string(resp.Content) != content {
		t.Fatalf("response content = %s", resp.Content)
	}
}

func TestMockProvider_StreamExplicitDeltas(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"a":1}`),
		Deltas:  []string{`{"a"`, `:1}`},
	})
	var n int
	if _, err := mock.Stream(context.Background(), Request{}, func(string) { n++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deltas, got %d", n)
	}
}

func TestSplitRunesKeepsMultibyte(t *testing.T) {
	parts := splitRunes("对错对错对", 2)
	if len(parts) != 3 || parts[0] != "对错" || parts[2] != "对" {
		t.Fatalf("unexpected split: %q", parts)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != "unknown" {
		t.Fatalf("empty purpose should read as unknown, got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeGrading)
	if p := PurposeFrom(ctx); p != "grading" {
		t.Fatalf("expected 'grading', got %q", p)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if WithRequestID(ctx, "") != ctx {
		t.Fatal("empty id should leave the context untouched")
	}
	if id := requestIDFrom(WithRequestID(ctx, "host/abc-000001")); id != "host/abc-000001" {
		t.Fatalf("unexpected request id %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai compatible", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test", BaseURL: "https://api.deepseek.com"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STUDYLOOP_LLM_PROVIDER", "openai")
	t.Setenv("STUDYLOOP_OPENAI_API_KEY", "sk-env")
	t.Setenv("STUDYLOOP_OPENAI_BASE_URL", "https://api.deepseek.com")
	t.Setenv("STUDYLOOP_OPENAI_MODEL", "deepseek-chat")
	t.Setenv("STUDYLOOP_LLM_MAX_ATTEMPTS", "5")

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.Provider != "openai" || cfg.OpenAI.BaseURL != "https://api.deepseek.com" || cfg.OpenAI.Model != "deepseek-chat" {
		t.Fatalf("unexpected config: %+v", cfg.OpenAI)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
}

func TestNewOpenRouterProvider_PassThroughModel(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q", p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("deepseek-chat")
	if c == nil {
		t.Fatal("expected pricing for deepseek-chat")
	}
	if got := c.Cost(1_000_000, 0); got != 0.27 {
		t.Errorf("input cost = %v, want 0.27", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}

	tests := []struct {
		model string
		want  float64 // input price
	}{
		{"claude-haiku", 1},
		{"claude-haiku-4-5-20251001", 1},
		{"claude-sonnet-4-20250514", 3},
		{"gemini-flash", 0.1},
		{"openai/gpt-4o-mini", 0.15},
		{"google/gemini-2.0-flash-exp", 0},
		{"gpt-4o-2024-11-20", 2.5},
		{"GPT-4o", 2.5},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if c == nil {
			t.Errorf("%s: no pricing", tt.model)
			continue
		}
		if c.InputPerMTok != tt.want {
			t.Errorf("%s: input = %v, want %v", tt.model, c.InputPerMTok, tt.want)
		}
	}
}
