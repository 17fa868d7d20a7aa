// Package adaptive suggests mode changes from a session's running metrics.
package adaptive

import (
	"fmt"

	"github.com/abhisek/sherpa/internal/tutor"
)

// Thresholds tune the policy. None of them affect correctness; they only
// decide when a suggestion is worth surfacing.
type Thresholds struct {
	// MinSample is the number of attempts needed before a harder mode is
	// suggested.
	MinSample int `yaml:"min_sample" validate:"gte=1"`
	// HighSuccess is the first-try success rate that counts as comfortable.
	HighSuccess float64 `yaml:"high_success" validate:"gt=0,lte=1"`
	// LowHintRate is the hints-per-attempt ceiling for a harder suggestion.
	LowHintRate float64 `yaml:"low_hint_rate" validate:"gte=0"`

	// MinStruggleSample is the number of attempts needed before a more
	// scaffolded mode is suggested.
	MinStruggleSample int `yaml:"min_struggle_sample" validate:"gte=1"`
	// LowSuccess is the success rate below which the learner is struggling.
	LowSuccess float64 `yaml:"low_success" validate:"gte=0,lte=1"`
	// HighHintRate is the hints-per-attempt rate that signals struggle.
	HighHintRate float64 `yaml:"high_hint_rate" validate:"gt=0"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSample:         3,
		HighSuccess:       0.8,
		LowHintRate:       0.34,
		MinStruggleSample: 2,
		LowSuccess:        0.3,
		HighHintRate:      1.5,
	}
}

// Direction says which way a suggestion moves the learner.
type Direction string

const (
	Harder     Direction = "harder"
	Scaffolded Direction = "scaffolded"
)

// ModeSuggestion proposes switching from the current mode to another one.
type ModeSuggestion struct {
	From      string
	To        string
	Direction Direction
	Reason    string
}

func (s ModeSuggestion) String() string {
	return fmt.Sprintf("try %s mode next (%s)", s.To, s.Reason)
}

var (
	harderMode = map[string]string{
		"guided":   "tutorial",
		"tutorial": "challenge",
		"debug":    "challenge",
	}
	scaffoldedMode = map[string]string{
		"challenge": "tutorial",
		"tutorial":  "guided",
		"debug":     "guided",
	}
)

// Advise returns a mode suggestion for the metrics snapshot, or nil when
// the current mode fits. It is pure: the same snapshot always yields the
// same answer.
func Advise(m tutor.Metrics, current string, th Thresholds) *ModeSuggestion {
	success := m.SuccessRate()
	hintRate := m.HintsPerAttempt()

	if m.AttemptsTotal >= th.MinSample && success >= th.HighSuccess && hintRate <= th.LowHintRate {
		if to, ok := harderMode[current]; ok {
			return &ModeSuggestion{
				From:      current,
				To:        to,
				Direction: Harder,
				Reason:    fmt.Sprintf("%.0f%% solved on the first try", success*100),
			}
		}
		return nil
	}

	if m.AttemptsTotal >= th.MinStruggleSample && (success < th.LowSuccess || hintRate >= th.HighHintRate) {
		to, ok := scaffoldedMode[current]
		if !ok {
			return nil
		}
		reason := fmt.Sprintf("%.0f%% solved on the first try", success*100)
		if hintRate >= th.HighHintRate {
			reason = fmt.Sprintf("%.1f hints per attempt", hintRate)
		}
		return &ModeSuggestion{From: current, To: to, Direction: Scaffolded, Reason: reason}
	}
	return nil
}

// ShouldOfferHint reports whether the learner is struggling enough that a
// hint should be offered without being asked for.
func ShouldOfferHint(m tutor.Metrics) bool {
	return m.AttemptsTotal >= 2 && m.SuccessRate() < 0.5
}
