// Package review grades one attempt at one slot by delegating the judgment
// to an LLM and classifying whatever comes back into a fixed verdict.
package review

// Outcome is the classified result of grading an attempt.
type Outcome string

const (
	OutcomeCorrect          Outcome = "correct"
	OutcomeIncorrect        Outcome = "incorrect"
	OutcomeNeedsImprovement Outcome = "needs_improvement"
)

// Flag marks verdicts that did not come from a clean grading response.
type Flag string

const (
	FlagNone Flag = ""
	// FlagUncertain: the response could not be classified.
	FlagUncertain Flag = "uncertain"
	// FlagTimeout: the grader did not answer within the timeout.
	FlagTimeout Flag = "timeout"
	// FlagUnavailable: the grader failed. Session state must not change.
	FlagUnavailable Flag = "unavailable"
)

// Verdict is the immutable result of evaluating one attempt.
type Verdict struct {
	SlotID        int
	Outcome       Outcome
	Feedback      string
	Hint          string
	HintLevelUsed int
	Flag          Flag
}

// Applicable reports whether the verdict should drive a state transition.
// Unavailable verdicts are surfaced as feedback only.
func (v Verdict) Applicable() bool {
	return v.Flag != FlagUnavailable
}
