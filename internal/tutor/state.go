// Package tutor owns the per-slot review state machine and session metrics
// for one tutorial run.
package tutor

import (
	"errors"

	"github.com/abhisek/sherpa/internal/review"
)

// Status is a slot's position in the review cycle.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAttempted        Status = "attempted"
	StatusNeedsImprovement Status = "needs_improvement"
	StatusComplete         Status = "complete"
)

// MaxHintLevel caps a slot's hint level.
const MaxHintLevel = 3

var (
	ErrUnknownSlot     = errors.New("unknown slot")
	ErrSlotComplete    = errors.New("slot already complete")
	ErrAttemptInFlight = errors.New("an attempt is already being reviewed")
	ErrNoAttempt       = errors.New("no attempt in flight for slot")
)

// SlotState is the mutable review state of one slot.
type SlotState struct {
	ID        int
	Goal      string
	Concept   string
	Status    Status
	HintLevel int

	// Attempts counts attempts begun on this slot.
	Attempts int
	// Verdicts counts verdicts applied to this slot.
	Verdicts int
	// FirstTry is set when the first verdict was correct.
	FirstTry bool

	LastOutcome  review.Outcome
	LastFeedback string
}

// Transition describes the effect of one applied verdict.
type Transition struct {
	SlotID int
	From   Status
	To     Status

	// FirstTry is set when this verdict completed the slot on its first
	// verdict.
	FirstTry bool

	// RolledBack is set when the verdict was not applicable and the
	// attempt was undone.
	RolledBack bool

	// Finished is set exactly once, on the transition that completed the
	// last slot.
	Finished bool
}

// HintResult is the outcome of a hint request.
type HintResult struct {
	SlotID int
	Level  int
	Text   string

	// Advanced is false when the level was already at the cap.
	Advanced bool
}
