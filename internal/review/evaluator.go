package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/paper"
	"github.com/abhisek/sherpa/internal/skeleton"
)

// Config controls grading.
type Config struct {
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxTokens    int           `yaml:"max_tokens" validate:"gte=64"`
	ContextChars int           `yaml:"context_chars" validate:"gte=0"`
	FileChars    int           `yaml:"file_chars" validate:"gte=0"`
}

// DefaultConfig returns the recommended grading settings.
func DefaultConfig() Config {
	return Config{
		Timeout:      45 * time.Second,
		MaxTokens:    600,
		ContextChars: 2000,
		FileChars:    12000,
	}
}

// Input is one grading request.
type Input struct {
	Topic     string
	Language  string
	Slot      skeleton.Slot
	Attempt   skeleton.Attempt
	HintLevel int
	Paper     *paper.Text

	// FileText is the whole current file, for context.
	FileText string

	// Instructions carries mode-specific grading guidance.
	Instructions string
}

// Evaluator grades attempts. It never returns an error: every failure is
// folded into a flagged verdict.
type Evaluator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(provider llm.Provider, cfg Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{provider: provider, config: cfg, logger: logger}
}

// Evaluate grades in.Attempt against in.Slot.
//
// Unclassifiable responses become needs_improvement with FlagUncertain.
// A response slower than the configured timeout becomes needs_improvement
// with FlagTimeout. Any other provider failure yields FlagUnavailable,
// which callers must not apply to session state.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) Verdict {
	ctx = llm.WithPurpose(ctx, llm.PurposeReview)
	v := Verdict{SlotID: in.Slot.ID, HintLevelUsed: in.HintLevel}

	callCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	resp, err := e.provider.Generate(callCtx, llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, e.config)}},
		Schema:    VerdictSchema,
		MaxTokens: e.config.MaxTokens,
	})

	var invalid *llm.ErrInvalidResponse
	var truncated *llm.ErrMaxTokensExceeded
	switch {
	case err == nil:
		c, ok := Classify(resp.Content)
		if !ok {
			e.logger.Warn("unclassifiable grading response", "slot", in.Slot.ID)
			return uncertain(v, c.Feedback)
		}
		v.Outcome, v.Feedback, v.Hint = c.Outcome, c.Feedback, c.Hint
		if v.Outcome == OutcomeCorrect {
			v.Hint = ""
		}
		return v

	case errors.As(err, &invalid), errors.As(err, &truncated):
		e.logger.Warn("invalid grading response", "slot", in.Slot.ID, "error", err)
		return uncertain(v, "")

	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		e.logger.Warn("grading timed out", "slot", in.Slot.ID, "timeout", e.config.Timeout)
		v.Outcome = OutcomeNeedsImprovement
		v.Flag = FlagTimeout
		v.Feedback = "The review timed out before an answer came back, so this attempt could not be confirmed. Save again to retry."
		return v

	default:
		e.logger.Warn("grader unavailable", "slot", in.Slot.ID, "error", err)
		v.Outcome = OutcomeNeedsImprovement
		v.Flag = FlagUnavailable
		v.Feedback = "The reviewer is unavailable right now. Nothing was recorded; save again to retry."
		return v
	}
}

func uncertain(v Verdict, partial string) Verdict {
	v.Outcome = OutcomeNeedsImprovement
	v.Flag = FlagUncertain
	v.Feedback = "The review was inconclusive, so this attempt is marked as needing improvement. Double-check it against the goal and save again."
	if partial != "" {
		v.Feedback += "\n\n" + partial
	}
	return v
}
