package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one request to a model and returns its reply.
//
// When the request carries a Schema the provider asks the model for JSON in
// that shape and returns Content only after it validated; otherwise Content
// holds the reply text as a JSON string. Implementations must honour ctx
// cancellation and report failures with the error types in errors.go.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the resolved model name, as recorded in the event log.
	ModelID() string
}

// Request is a single-turn exchange: a system prompt plus the user message
// built from the exercise or attempt being handled.
type Request struct {
	System   string
	Messages []Message

	// Schema selects structured output. Nil means plain text.
	Schema *Schema

	// MaxTokens caps the reply; zero uses defaultMaxTokens. A reply that
	// hits the cap on a structured request is ErrMaxTokensExceeded.
	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default, which the
	// graders rely on for repeatable verdicts.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Stop reasons, normalized across providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Schema names a JSON Schema. Name doubles as the Anthropic tool name and
// the OpenAI schema name, so it stays kebab-case ("exercise-skeleton",
// "review-verdict"). Description is shown to the model.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a completed reply. Model is the model that actually served
// it, which can differ from the configured alias.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
