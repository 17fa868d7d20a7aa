package skeleton

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/paper"
)

// Config controls skeleton generation.
type Config struct {
	MinSlots     int     `yaml:"min_slots" validate:"gte=1"`
	MaxSlots     int     `yaml:"max_slots" validate:"gtefield=MinSlots"`
	MaxAttempts  int     `yaml:"max_attempts" validate:"gte=1"`
	MaxTokens    int     `yaml:"max_tokens" validate:"gte=256"`
	Temperature  float64 `yaml:"temperature" validate:"gte=0,lte=1"`
	ContextChars int     `yaml:"context_chars" validate:"gte=0"`
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		MinSlots:     4,
		MaxSlots:     7,
		MaxAttempts:  3,
		MaxTokens:    8192,
		Temperature:  0.4,
		ContextChars: 6000,
	}
}

// GenerateInput is everything the generator needs for one exercise.
type GenerateInput struct {
	Topic    string
	Paper    *paper.Text
	Language Language

	// Instructions carries mode-specific guidance for the exercise style.
	Instructions string

	// PriorErrors lists why earlier attempts in the same call were rejected.
	PriorErrors []string
}

// Generator produces exercise skeletons using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, config: cfg, logger: logger}
}

// Generate asks the provider for a skeleton and enforces its shape locally.
// Rejected, truncated or schema-invalid responses are re-requested up to MaxAttempts
// times with the rejection reasons fed back; then ErrMalformedSkeleton is
// returned. Other provider errors fail immediately.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*Skeleton, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeSkeleton)
	if in.Language.Name == "" {
		in.Language = Python
	}
	if in.Paper == nil {
		in.Paper = paper.FromTopic(in.Topic)
	}

	var problems []string
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		in.PriorErrors = problems

		resp, err := g.provider.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, g.config)}},
			Schema:      Schema,
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
		if err != nil {
			var invalid *llm.ErrInvalidResponse
			var truncated *llm.ErrMaxTokensExceeded
			switch {
			case errors.As(err, &invalid):
				problems = append(problems, "the response did not match the JSON schema")
			case errors.As(err, &truncated):
				problems = append(problems, "the response was cut off; keep the header, preludes and solutions shorter")
			default:
				return nil, fmt.Errorf("generate skeleton: %w", err)
			}
			g.logger.Warn("skeleton response rejected", "attempt", attempt, "error", err)
			continue
		}

		var out skeletonOutput
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			problems = append(problems, "the response was not valid JSON")
			g.logger.Warn("skeleton response unparseable", "attempt", attempt, "error", err)
			continue
		}

		if verr := validateOutput(&out, g.config); verr != nil {
			problems = append(problems, verr.Error())
			g.logger.Warn("skeleton failed validation", "attempt", attempt, "error", verr)
			continue
		}

		s := buildSkeleton(&out, in)
		g.logger.Info("skeleton generated", "topic", in.Topic, "slots", len(s.Slots), "attempts", attempt)
		return s, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %s", ErrMalformedSkeleton, g.config.MaxAttempts, strings.Join(problems, "; "))
}
