// Package modes holds the pedagogical variants a session can run in. Each
// variant shapes how the exercise is generated, how many hints the file
// shows up front, and how attempts are reviewed.
package modes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/paper"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/tutor"
)

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown mode")

// Mode names a pedagogical variant.
type Mode string

const (
	Tutorial  Mode = "tutorial"
	Guided    Mode = "guided"
	Challenge Mode = "challenge"
	Debug     Mode = "debug"
)

// All lists the modes in order of increasing independence.
var All = []Mode{Guided, Tutorial, Debug, Challenge}

// ParseMode resolves a mode name. The empty string selects Tutorial.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", Tutorial:
		return Tutorial, nil
	case Guided:
		return Guided, nil
	case Challenge:
		return Challenge, nil
	case Debug:
		return Debug, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Handler drives one mode.
type Handler interface {
	Mode() Mode

	// RenderOptions controls how much scaffolding the exercise file shows.
	RenderOptions() skeleton.RenderOptions

	// GenerateExercise produces the skeleton for topic.
	GenerateExercise(ctx context.Context, topic string, p *paper.Text, lang skeleton.Language) (*skeleton.Skeleton, error)

	// ReviewAttempt grades one attempt. It never fails; problems surface
	// as flagged verdicts.
	ReviewAttempt(ctx context.Context, in review.Input) review.Verdict

	// Summarize renders the end-of-session report.
	Summarize(ctx context.Context, s tutor.Summary) string
}

// profile is the per-mode data the shared handler is parameterised by.
type profile struct {
	mode      Mode
	hintCount int
	generate  string
	review    string
}

var profiles = map[Mode]profile{
	Tutorial: {
		mode:      Tutorial,
		hintCount: 1,
		generate: "Tutorial mode. Give each TODO a short starter that names the inputs " +
			"and the variable to produce, leaving the core computation to the learner.",
		review: "Tutorial mode. Be encouraging and connect feedback to the paper's equations.",
	},
	Guided: {
		mode:      Guided,
		hintCount: skeleton.HintLevels,
		generate: "Guided mode. Keep TODOs small. Starters should outline the steps as " +
			"comments so the learner only fills in one or two expressions per TODO.",
		review: "Guided mode. Explain the reasoning behind the expected code in full; " +
			"the learner wants explanation over challenge.",
	},
	Challenge: {
		mode:      Challenge,
		hintCount: 0,
		generate: "Challenge mode. Leave starters empty. Goals state requirements and " +
			"constraints only, without suggesting how to implement them.",
		review: "Challenge mode. Hold the attempt to the paper's exact formulation and " +
			"point out numerical stability or efficiency issues.",
	},
	Debug: {
		mode:      Debug,
		hintCount: 1,
		generate: "Debug mode. Every starter must be a plausible but buggy implementation " +
			"with one realistic conceptual bug (wrong sign, wrong reduction, missing " +
			"detach, bad masking, off-by-one dimension). The goal says what the code " +
			"should do, not what the bug is.",
		review: "Debug mode. The learner was given buggy code to fix. Judge whether the " +
			"bug is fixed without introducing new ones.",
	},
}

// New returns the handler for mode. provider is used only for the session
// summary and may be nil.
func New(mode Mode, gen *skeleton.Generator, eval *review.Evaluator, provider llm.Provider) (Handler, error) {
	p, ok := profiles[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return &handler{profile: p, gen: gen, eval: eval, provider: provider}, nil
}

type handler struct {
	profile
	gen      *skeleton.Generator
	eval     *review.Evaluator
	provider llm.Provider
}

func (h *handler) Mode() Mode { return h.mode }

func (h *handler) RenderOptions() skeleton.RenderOptions {
	return skeleton.RenderOptions{HintCount: h.hintCount}
}

func (h *handler) GenerateExercise(ctx context.Context, topic string, p *paper.Text, lang skeleton.Language) (*skeleton.Skeleton, error) {
	return h.gen.Generate(ctx, skeleton.GenerateInput{
		Topic:        topic,
		Paper:        p,
		Language:     lang,
		Instructions: h.generate,
	})
}

func (h *handler) ReviewAttempt(ctx context.Context, in review.Input) review.Verdict {
	in.Instructions = h.review
	return h.eval.Evaluate(ctx, in)
}
