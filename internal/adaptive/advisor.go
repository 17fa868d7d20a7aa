package adaptive

import "github.com/abhisek/sherpa/internal/tutor"

// Advisor surfaces suggestions for one session. It is consulted once per
// completed slot and never repeats the suggestion it surfaced last.
type Advisor struct {
	mode       string
	thresholds Thresholds
	last       *ModeSuggestion
}

// NewAdvisor creates an Advisor for a session running in mode.
func NewAdvisor(mode string, th Thresholds) *Advisor {
	return &Advisor{mode: mode, thresholds: th}
}

// Observe evaluates the snapshot and returns a suggestion only when it
// points somewhere other than the previous one. The reason text is not
// compared.
func (a *Advisor) Observe(m tutor.Metrics) *ModeSuggestion {
	s := Advise(m, a.mode, a.thresholds)
	if s == nil {
		return nil
	}
	if a.last != nil && a.last.To == s.To && a.last.Direction == s.Direction {
		return nil
	}
	a.last = s
	return s
}

// Last returns the most recently surfaced suggestion.
func (a *Advisor) Last() *ModeSuggestion {
	return a.last
}
