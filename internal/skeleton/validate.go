package skeleton

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSkeleton is returned when generation keeps producing
// skeletons that fail local shape checks.
var ErrMalformedSkeleton = errors.New("malformed skeleton")

// ValidationError describes why a generated skeleton was rejected.
type ValidationError struct {
	Slot    int // 1-based; 0 for skeleton-wide problems
	Message string
}

func (e *ValidationError) Error() string {
	if e.Slot == 0 {
		return e.Message
	}
	return fmt.Sprintf("slot %d: %s", e.Slot, e.Message)
}

// validateOutput enforces slot count and hint ladder shape. A ladder longer
// than HintLevels is truncated; a shorter one is rejected.
func validateOutput(out *skeletonOutput, cfg Config) *ValidationError {
	n := len(out.Slots)
	if n < cfg.MinSlots || n > cfg.MaxSlots {
		return &ValidationError{Message: fmt.Sprintf("got %d slots, want %d-%d", n, cfg.MinSlots, cfg.MaxSlots)}
	}
	for i := range out.Slots {
		s := &out.Slots[i]
		if strings.TrimSpace(s.Goal) == "" {
			return &ValidationError{Slot: i + 1, Message: "empty goal"}
		}
		var hints []string
		for _, h := range s.Hints {
			if strings.TrimSpace(h) != "" {
				hints = append(hints, h)
			}
		}
		if len(hints) < HintLevels {
			return &ValidationError{Slot: i + 1, Message: fmt.Sprintf("got %d hints, want %d", len(hints), HintLevels)}
		}
		s.Hints = hints[:HintLevels]
	}
	return nil
}

// buildSkeleton converts a validated response into a Skeleton with ids
// assigned by position.
func buildSkeleton(out *skeletonOutput, in GenerateInput) *Skeleton {
	s := &Skeleton{
		Topic:    in.Topic,
		Title:    strings.TrimSpace(out.Title),
		Language: in.Language,
		Header:   out.Header,
		Footer:   out.Footer,
	}
	if s.Title == "" {
		s.Title = in.Topic
	}
	for i, so := range out.Slots {
		slot := Slot{
			ID:       i + 1,
			Goal:     oneLine(so.Goal),
			Concept:  strings.TrimSpace(so.Concept),
			Prelude:  so.Prelude,
			Indent:   cleanIndent(so.Indent),
			Starter:  strings.Trim(so.Starter, "\n"),
			Solution: so.Solution,
		}
		if strings.TrimSpace(slot.Starter) == in.Language.Placeholder {
			slot.Starter = ""
		}
		for n := range HintLevels {
			slot.Hints[n] = oneLine(so.Hints[n])
		}
		s.Slots = append(s.Slots, slot)
	}
	return s
}

// cleanIndent keeps only leading spaces and tabs.
func cleanIndent(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
