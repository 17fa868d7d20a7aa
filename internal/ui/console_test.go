package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/runner"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/tutor"
)

func TestConsole_Started(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Started(runner.StartInfo{
		SessionID: "0f8fad5b-d9cb-469f-a165-70867728950e",
		Title:     "DPO loss",
		Mode:      "tutorial",
		Path:      "dpo.py",
		Slots:     []skeleton.Slot{{ID: 1, Goal: "compute log ratios"}, {ID: 2, Goal: "apply the sigmoid"}},
	})

	out := buf.String()
	assert.Contains(t, out, "sherpa · DPO loss")
	assert.Contains(t, out, "tutorial mode · 2 TODOs · session 0f8fad5…")
	assert.Contains(t, out, "Open dpo.py")
	assert.Contains(t, out, "2. apply the sigmoid")
	// Output to a non-terminal carries no escape codes.
	assert.NotContains(t, out, "\x1b[")
}

func TestConsole_Feedback(t *testing.T) {
	tests := []struct {
		name string
		v    review.Verdict
		tr   tutor.Transition
		want []string
	}{
		{
			"first try",
			review.Verdict{Outcome: review.OutcomeCorrect, Feedback: "Matches equation 7."},
			tutor.Transition{FirstTry: true},
			[]string{"TODO 3", "✓ correct on the first try", "Matches equation 7."},
		},
		{
			"incorrect with hint",
			review.Verdict{Outcome: review.OutcomeIncorrect, Feedback: "Sign is flipped.", Hint: "Check the log-sigmoid."},
			tutor.Transition{},
			[]string{"✗ not yet", "Sign is flipped.", "Hint: Check the log-sigmoid."},
		},
		{
			"timeout",
			review.Verdict{Outcome: review.OutcomeNeedsImprovement, Flag: review.FlagTimeout},
			tutor.Transition{},
			[]string{"~ needs improvement", "timed out"},
		},
		{
			"unavailable",
			review.Verdict{Outcome: review.OutcomeNeedsImprovement, Flag: review.FlagUnavailable},
			tutor.Transition{RolledBack: true},
			[]string{"nothing recorded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf).Feedback(tutor.SlotState{ID: 3}, tt.v, tt.tr)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestConsole_HintsAndNotices(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Hint(tutor.HintResult{SlotID: 2, Level: 1, Text: "Use logsumexp.", Advanced: true})
	c.Hint(tutor.HintResult{SlotID: 2, Level: 3, Text: "Subtract the max.", Advanced: false})
	c.Nudge(4)
	c.Suggest(adaptive.ModeSuggestion{From: "tutorial", To: "challenge", Reason: "100% solved on the first try"})
	c.Issues([]skeleton.MarkerIssue{{SlotID: 2, Reason: skeleton.IssueMissing}})
	c.Progress(2, 4)
	c.Notice("bye")

	out := buf.String()
	assert.Contains(t, out, "Hint 1/3 for TODO 2: Use logsumexp.")
	assert.Contains(t, out, "Hint 3/3 for TODO 2 (last one): Subtract the max.")
	assert.Contains(t, out, `Type "hint 4"`)
	assert.Contains(t, out, "try challenge mode next")
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "2/4")
	assert.True(t, strings.HasSuffix(out, "bye\n"))
}

func TestConsole_StatusAndSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Status([]tutor.SlotState{
		{ID: 1, Goal: "compute log ratios", Status: tutor.StatusComplete, Attempts: 1},
		{ID: 2, Goal: "a goal that is much longer than thirty characters", Status: tutor.StatusPending},
	}, tutor.Metrics{AttemptsTotal: 1, CorrectOnFirstTry: 1})
	c.Summary("Completed 1 of 2 TODOs")

	out := buf.String()
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "first-try rate 100%")
	assert.Contains(t, out, "Completed 1 of 2 TODOs")
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", got)
}
