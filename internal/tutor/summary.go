package tutor

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// SummaryRow is one slot's line in the completion summary.
type SummaryRow struct {
	ID        int
	Goal      string
	Status    Status
	Attempts  int
	HintLevel int
	FirstTry  bool
}

// Summary is the end-of-run report.
type Summary struct {
	Topic    string
	Mode     string
	Rows     []SummaryRow
	Metrics  Metrics
	Duration time.Duration
	Finished bool
}

// Completed counts rows whose slot is complete.
func (s Summary) Completed() int {
	return lo.CountBy(s.Rows, func(r SummaryRow) bool { return r.Status == StatusComplete })
}

// Summary builds the report for the run so far.
func (m *Machine) Summary(mode string) Summary {
	return Summary{
		Topic: m.skel.Topic,
		Mode:  mode,
		Rows: lo.Map(m.slots, func(s SlotState, _ int) SummaryRow {
			return SummaryRow{
				ID:        s.ID,
				Goal:      s.Goal,
				Status:    s.Status,
				Attempts:  s.Attempts,
				HintLevel: s.HintLevel,
				FirstTry:  s.FirstTry,
			}
		}),
		Metrics:  m.Metrics(),
		Duration: m.now().Sub(m.startedAt),
		Finished: m.finished,
	}
}

// Text renders the summary as plain text, used as LLM context and as the
// fallback when no prose summary is available.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nMode: %s\n", s.Topic, s.Mode)
	fmt.Fprintf(&b, "Completed %d of %d TODOs in %s\n", s.Completed(), len(s.Rows), s.Duration.Round(time.Second))
	for _, r := range s.Rows {
		first := ""
		if r.FirstTry {
			first = ", first try"
		}
		fmt.Fprintf(&b, "- TODO %d (%s): %s, %d attempt(s), hint level %d%s\n",
			r.ID, r.Goal, r.Status, r.Attempts, r.HintLevel, first)
	}
	fmt.Fprintf(&b, "First-try success rate: %.0f%%\n", s.Metrics.SuccessRate()*100)
	fmt.Fprintf(&b, "Hints requested: %d\n", s.Metrics.HintsRequested)
	if len(s.Metrics.ConceptsMastered) > 0 {
		fmt.Fprintf(&b, "Concepts mastered: %s\n", strings.Join(s.Metrics.ConceptsMastered, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
