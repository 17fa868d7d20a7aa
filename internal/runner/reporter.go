package runner

import (
	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/tutor"
)

// StartInfo describes a freshly written exercise.
type StartInfo struct {
	SessionID string
	Topic     string
	Title     string
	Mode      string
	Path      string
	Slots     []skeleton.Slot
}

// Reporter receives everything the learner should see. Implementations
// are called from the run loop only.
type Reporter interface {
	Started(info StartInfo)
	Reviewing(a skeleton.Attempt)
	Feedback(slot tutor.SlotState, v review.Verdict, tr tutor.Transition)
	Hint(h tutor.HintResult)
	Issues(issues []skeleton.MarkerIssue)
	Suggest(s adaptive.ModeSuggestion)
	Nudge(slotID int)
	Progress(complete, total int)
	Status(slots []tutor.SlotState, m tutor.Metrics)
	Notice(msg string)
	Summary(text string)
}

type nopReporter struct{}

func (nopReporter) Started(StartInfo)                                          {}
func (nopReporter) Reviewing(skeleton.Attempt)                                 {}
func (nopReporter) Feedback(tutor.SlotState, review.Verdict, tutor.Transition) {}
func (nopReporter) Hint(tutor.HintResult)                                      {}
func (nopReporter) Issues([]skeleton.MarkerIssue)                              {}
func (nopReporter) Suggest(adaptive.ModeSuggestion)                            {}
func (nopReporter) Nudge(int)                                                  {}
func (nopReporter) Progress(int, int)                                          {}
func (nopReporter) Status([]tutor.SlotState, tutor.Metrics)                    {}
func (nopReporter) Notice(string)                                              {}
func (nopReporter) Summary(string)                                             {}
