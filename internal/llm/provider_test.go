package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMockProvider_ServesQueueInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"outcome":"correct"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockText("Nice work."),
		MockResponse{Err: &ErrRateLimit{}},
	)

	first, err := mock.Generate(context.Background(), Request{System: "grade"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"outcome":"correct"}` || first.Usage.InputTokens != 10 {
		t.Fatalf("first = %+v", first)
	}
	if first.StopReason != "end" || first.Model != "mock" {
		t.Fatalf("defaults not applied: %+v", first)
	}

	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `"Nice work."` {
		t.Fatalf("second = %s", second.Content)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable on empty queue, got %v", err)
	}
	if mock.CallCount() != 4 || mock.Calls[0].System != "grade" {
		t.Fatalf("calls not recorded: %d", mock.CallCount())
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("model id = %q", mock.ModelID())
	}
}

func TestMockProvider_DoneContextKeepsQueue(t *testing.T) {
	mock := NewMockProvider(MockText("kept"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", mock.Pending())
	}
	if mock.CallCount() != 1 {
		t.Fatalf("call not recorded")
	}
}

func TestMockProvider_ScriptedStopReason(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"cut`), StopReason: "max_tokens", Model: "mock-small"})
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != "max_tokens" || resp.Model != "mock-small" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeReview)
	if p := PurposeFrom(ctx); p != "review" {
		t.Fatalf("expected 'review', got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != "unknown" {
		t.Fatalf("empty purpose should read as unknown, got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{Provider: "openrouter"},
			wantErr: true,
		},
		{
			name:    "gemini with key",
			cfg:     Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
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

func TestComplete_ReturnsTrimmedText(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("  Nice work on the loss.  \n")})

	got, err := Complete(context.Background(), mock, "Summarize the session.", "topic: DPO", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Nice work on the loss." {
		t.Fatalf("got %q", got)
	}
	if mock.Calls[0].Schema != nil {
		t.Fatal("Complete must not send a schema")
	}
	if want := "Summarize the session.\n\nContext:\ntopic: DPO"; mock.Calls[0].Messages[0].Content != want {
		t.Fatalf("prompt = %q, want %q", mock.Calls[0].Messages[0].Content, want)
	}
}

func TestComplete_EmptyReplyIsInvalid(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("   ")})

	_, err := Complete(context.Background(), mock, "Summarize.", "", 200)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout_CancelsSlowCalls(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.ModelID() != "slow" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
}

func TestWithTimeout_ZeroIsPassThrough(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("expected the provider to be returned unchanged")
	}
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"claude-sonnet-4-20250514", true},
		{"anthropic/claude-sonnet-4", true},
		{"openai/gpt-4o", true},
		{"some-local-model", false},
	}
	for _, tt := range tests {
		if got := LookupCost(tt.model) != nil; got != tt.want {
			t.Errorf("LookupCost(%q) found = %v, want %v", tt.model, got, tt.want)
		}
	}

	c := LookupCost("gpt-4o")
	if got := c.Cost(1_000_000, 1_000_000); got != 12.5 {
		t.Errorf("Cost = %v, want 12.5", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SHERPA_LLM_PROVIDER", "openai")
	t.Setenv("SHERPA_OPENAI_API_KEY", "sk-env")
	t.Setenv("SHERPA_OPENAI_MODEL", "gpt-4.1")
	t.Setenv("SHERPA_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" || cfg.OpenAI.Model != "gpt-4.1" {
		t.Fatalf("unexpected config: %+v", cfg.OpenAI)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDiscoverConfig_PrefersAnthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a discovered config")
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("unexpected discovery: %s", cfg.Provider)
	}
}

func TestComplete_UnwrapsQuotedText(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"Keep going."`)})

	got, err := Complete(context.Background(), mock, "Encourage.", "", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Keep going." {
		t.Fatalf("got %q", got)
	}
}
