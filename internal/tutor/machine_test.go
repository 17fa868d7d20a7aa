package tutor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
)

func testSkeleton(n int) *skeleton.Skeleton {
	s := &skeleton.Skeleton{Topic: "DPO", Language: skeleton.Python}
	for i := 1; i <= n; i++ {
		s.Slots = append(s.Slots, skeleton.Slot{
			ID:      i,
			Goal:    fmt.Sprintf("goal %d", i),
			Concept: fmt.Sprintf("concept-%d", i),
			Hints:   [3]string{fmt.Sprintf("h1-%d", i), fmt.Sprintf("h2-%d", i), fmt.Sprintf("h3-%d", i)},
		})
	}
	return s
}

func attempt(id int) skeleton.Attempt {
	return skeleton.Attempt{SlotID: id, Text: "x = 1"}
}

func verdict(id int, o review.Outcome) review.Verdict {
	return review.Verdict{SlotID: id, Outcome: o}
}

func mustApply(t *testing.T, m *Machine, id int, o review.Outcome) Transition {
	t.Helper()
	if err := m.BeginAttempt(attempt(id)); err != nil {
		t.Fatalf("begin %d: %v", id, err)
	}
	tr, err := m.ApplyVerdict(verdict(id, o))
	if err != nil {
		t.Fatalf("apply %d: %v", id, err)
	}
	return tr
}

func TestMachine_CorrectOnFirstTry(t *testing.T) {
	m := NewMachine(testSkeleton(5))

	tr := mustApply(t, m, 2, review.OutcomeCorrect)

	if tr.From != StatusAttempted || tr.To != StatusComplete || !tr.FirstTry {
		t.Errorf("transition = %+v", tr)
	}
	s, _ := m.Slot(2)
	if s.Status != StatusComplete {
		t.Errorf("slot 2 status = %s", s.Status)
	}
	met := m.Metrics()
	if met.AttemptsTotal != 1 || met.CorrectOnFirstTry != 1 {
		t.Errorf("metrics = %+v", met)
	}
	if len(met.ConceptsMastered) != 1 || met.ConceptsMastered[0] != "concept-2" {
		t.Errorf("concepts = %v", met.ConceptsMastered)
	}
	for _, id := range []int{1, 3, 4, 5} {
		if s, _ := m.Slot(id); s.Status != StatusPending {
			t.Errorf("slot %d status = %s, want pending", id, s.Status)
		}
	}
}

func TestMachine_RetryAfterNeedsImprovement(t *testing.T) {
	m := NewMachine(testSkeleton(4))

	tr := mustApply(t, m, 1, review.OutcomeIncorrect)
	if tr.To != StatusNeedsImprovement {
		t.Fatalf("to = %s", tr.To)
	}
	tr = mustApply(t, m, 1, review.OutcomeCorrect)
	if tr.From != StatusAttempted || tr.To != StatusComplete || tr.FirstTry {
		t.Fatalf("transition = %+v", tr)
	}

	met := m.Metrics()
	if met.AttemptsTotal != 1 {
		t.Errorf("attempts_total = %d, want 1 (re-attempts do not count)", met.AttemptsTotal)
	}
	if met.CorrectOnFirstTry != 0 {
		t.Errorf("correct_on_first_try = %d, want 0", met.CorrectOnFirstTry)
	}
	s, _ := m.Slot(1)
	if s.Attempts != 2 || s.Verdicts != 2 {
		t.Errorf("slot counters = %+v", s)
	}
}

func TestMachine_HintCap(t *testing.T) {
	m := NewMachine(testSkeleton(5))

	var levels []int
	for i := 0; i < 5; i++ {
		res, err := m.RequestHint(4)
		if err != nil {
			t.Fatalf("hint %d: %v", i, err)
		}
		levels = append(levels, res.Level)
		if i < 3 && (!res.Advanced || res.Text != fmt.Sprintf("h%d-4", i+1)) {
			t.Errorf("hint %d = %+v", i, res)
		}
		if i >= 3 && res.Advanced {
			t.Errorf("hint %d advanced past the cap", i)
		}
	}
	if fmt.Sprint(levels) != "[1 2 3 3 3]" {
		t.Errorf("levels = %v", levels)
	}
	if got := m.Metrics().HintsRequested; got != 3 {
		t.Errorf("hints_requested = %d, want 3", got)
	}
	if s, _ := m.Slot(4); s.Status != StatusPending {
		t.Errorf("hints must not change status, got %s", s.Status)
	}
}

func TestMachine_HintRejections(t *testing.T) {
	m := NewMachine(testSkeleton(4))

	if _, err := m.RequestHint(9); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("unknown slot: %v", err)
	}

	mustApply(t, m, 1, review.OutcomeCorrect)
	if _, err := m.RequestHint(1); !errors.Is(err, ErrSlotComplete) {
		t.Errorf("complete slot: %v", err)
	}

	if err := m.BeginAttempt(attempt(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RequestHint(2); !errors.Is(err, ErrAttemptInFlight) {
		t.Errorf("in-flight slot: %v", err)
	}
	// Other slots can still take hints.
	if _, err := m.RequestHint(3); err != nil {
		t.Errorf("pending slot: %v", err)
	}
}

func TestMachine_AttemptRejections(t *testing.T) {
	m := NewMachine(testSkeleton(4))

	if err := m.BeginAttempt(attempt(7)); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("unknown slot: %v", err)
	}
	mustApply(t, m, 1, review.OutcomeCorrect)
	if err := m.BeginAttempt(attempt(1)); !errors.Is(err, ErrSlotComplete) {
		t.Errorf("complete slot: %v", err)
	}
	if err := m.BeginAttempt(attempt(2)); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginAttempt(attempt(3)); !errors.Is(err, ErrAttemptInFlight) {
		t.Errorf("second attempt: %v", err)
	}
	if _, err := m.ApplyVerdict(verdict(3, review.OutcomeCorrect)); !errors.Is(err, ErrNoAttempt) {
		t.Errorf("verdict for wrong slot: %v", err)
	}
}

func TestMachine_TimeoutVerdictNeedsImprovement(t *testing.T) {
	m := NewMachine(testSkeleton(4))
	if err := m.BeginAttempt(attempt(3)); err != nil {
		t.Fatal(err)
	}

	tr, err := m.ApplyVerdict(review.Verdict{SlotID: 3, Outcome: review.OutcomeNeedsImprovement, Flag: review.FlagTimeout})
	if err != nil {
		t.Fatal(err)
	}
	if tr.To != StatusNeedsImprovement || tr.RolledBack {
		t.Errorf("transition = %+v", tr)
	}
}

func TestMachine_UnavailableVerdictRollsBack(t *testing.T) {
	m := NewMachine(testSkeleton(4))
	if _, err := m.RequestHint(2); err != nil {
		t.Fatal(err)
	}
	before := m.Slots()
	beforeMetrics := m.Metrics()

	if err := m.BeginAttempt(attempt(2)); err != nil {
		t.Fatal(err)
	}
	tr, err := m.ApplyVerdict(review.Verdict{SlotID: 2, Outcome: review.OutcomeNeedsImprovement, Flag: review.FlagUnavailable})
	if err != nil {
		t.Fatal(err)
	}
	if !tr.RolledBack || tr.To != StatusPending {
		t.Errorf("transition = %+v", tr)
	}
	if fmt.Sprint(m.Slots()) != fmt.Sprint(before) {
		t.Errorf("slots changed:\n%v\n%v", before, m.Slots())
	}
	if fmt.Sprint(m.Metrics()) != fmt.Sprint(beforeMetrics) {
		t.Errorf("metrics changed: %+v vs %+v", beforeMetrics, m.Metrics())
	}
	if m.InFlight() != 0 {
		t.Error("attempt still in flight")
	}
	// The learner can retry.
	mustApply(t, m, 2, review.OutcomeCorrect)
}

func TestMachine_FinishedOnce(t *testing.T) {
	m := NewMachine(testSkeleton(5))

	finishes := 0
	for _, id := range []int{3, 1, 5, 2} {
		if tr := mustApply(t, m, id, review.OutcomeCorrect); tr.Finished {
			finishes++
		}
	}
	if m.Finished() {
		t.Fatal("finished before every slot completed")
	}
	mustApply(t, m, 4, review.OutcomeIncorrect)
	if tr := mustApply(t, m, 4, review.OutcomeCorrect); tr.Finished {
		finishes++
	}
	if finishes != 1 || !m.Finished() {
		t.Fatalf("finished emitted %d times", finishes)
	}
	if m.CurrentSlot() != 0 {
		t.Errorf("current slot = %d, want 0", m.CurrentSlot())
	}

	sum := m.Summary("tutorial")
	if len(sum.Rows) != 5 || sum.Completed() != 5 || !sum.Finished {
		t.Fatalf("summary = %+v", sum)
	}
	text := sum.Text()
	for i := 1; i <= 5; i++ {
		if !strings.Contains(text, fmt.Sprintf("TODO %d (goal %d): complete", i, i)) {
			t.Errorf("summary text missing slot %d:\n%s", i, text)
		}
	}
	if !strings.Contains(text, "First-try success rate: 80%") {
		t.Errorf("summary text:\n%s", text)
	}
}

// Hint levels never decrease and never exceed the cap, whatever the order
// of operations.
func TestMachine_HintLevelMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	m := NewMachine(testSkeleton(6))
	last := map[int]int{}
	outcomes := []review.Outcome{review.OutcomeCorrect, review.OutcomeIncorrect, review.OutcomeNeedsImprovement}

	for step := 0; step < 2000; step++ {
		id := rng.IntN(6) + 1
		switch rng.IntN(3) {
		case 0:
			_, _ = m.RequestHint(id)
		case 1:
			if m.BeginAttempt(attempt(id)) == nil {
				v := verdict(id, outcomes[rng.IntN(3)])
				if rng.IntN(5) == 0 {
					v.Flag = review.FlagUnavailable
				}
				if _, err := m.ApplyVerdict(v); err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
			}
		case 2:
			m.AbortAttempt()
		}
		for _, s := range m.Slots() {
			if s.HintLevel < last[s.ID] || s.HintLevel > MaxHintLevel {
				t.Fatalf("step %d: slot %d hint level %d (was %d)", step, s.ID, s.HintLevel, last[s.ID])
			}
			last[s.ID] = s.HintLevel
		}
		met := m.Metrics()
		if met.CorrectOnFirstTry > met.AttemptsTotal {
			t.Fatalf("step %d: metrics %+v", step, met)
		}
	}
}

func TestMetrics_Rates(t *testing.T) {
	var m Metrics
	if m.SuccessRate() != 0 || m.HintsPerAttempt() != 0 {
		t.Error("zero attempts must give zero rates")
	}
	m = Metrics{AttemptsTotal: 4, CorrectOnFirstTry: 3, HintsRequested: 2}
	if m.SuccessRate() != 0.75 || m.HintsPerAttempt() != 0.5 {
		t.Errorf("rates = %v, %v", m.SuccessRate(), m.HintsPerAttempt())
	}

	m.master("b")
	m.master("a")
	m.master("b")
	if fmt.Sprint(m.ConceptsMastered) != "[a b]" {
		t.Errorf("concepts = %v", m.ConceptsMastered)
	}
}
