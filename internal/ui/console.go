// Package ui renders session output on the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/runner"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/tutor"
	"github.com/abhisek/sherpa/internal/ui/components"
	"github.com/abhisek/sherpa/internal/ui/theme"
)

const defaultWidth = 72

// Console is a runner.Reporter writing styled lines to a terminal. Colors
// are dropped automatically when w is not a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

var _ runner.Reporter = (*Console)(nil)

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, width: defaultWidth}
}

func (c *Console) println(lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range lines {
		lipgloss.Fprintln(c.w, l)
	}
}

func (c *Console) Started(info runner.StartInfo) {
	lines := []string{
		theme.Title.Render("sherpa · " + info.Title),
		theme.Subtitle.Render(fmt.Sprintf("%s mode · %d TODOs · session %s", info.Mode, len(info.Slots), shortID(info.SessionID))),
		"",
		theme.Body.Render("Open " + info.Path + " in your editor and fill in the TODOs. Each save is reviewed."),
	}
	for _, s := range info.Slots {
		lines = append(lines, theme.Dim.Render(fmt.Sprintf("  %d. %s", s.ID, s.Goal)))
	}
	lines = append(lines, "", theme.Dim.Render(runner.Usage), "")
	c.println(lines...)
}

func (c *Console) Reviewing(a skeleton.Attempt) {
	c.println(theme.Dim.Render(fmt.Sprintf("Reviewing TODO %d…", a.SlotID)))
}

func (c *Console) Feedback(slot tutor.SlotState, v review.Verdict, tr tutor.Transition) {
	var badge string
	switch v.Outcome {
	case review.OutcomeCorrect:
		badge = theme.Correct.Render("✓ correct")
		if tr.FirstTry {
			badge += theme.Correct.Render(" on the first try")
		}
	case review.OutcomeIncorrect:
		badge = theme.Incorrect.Render("✗ not yet")
	default:
		badge = theme.NeedsWork.Render("~ needs improvement")
	}

	lines := []string{fmt.Sprintf("%s  %s", theme.Body.Render(fmt.Sprintf("TODO %d", slot.ID)), badge)}
	switch v.Flag {
	case review.FlagTimeout:
		lines = append(lines, theme.Warning.Render("  (the review timed out)"))
	case review.FlagUncertain:
		lines = append(lines, theme.Warning.Render("  (the review could not be read reliably)"))
	case review.FlagUnavailable:
		lines = append(lines, theme.Warning.Render("  (reviewer unavailable, nothing recorded)"))
	}
	if v.Feedback != "" {
		lines = append(lines, indent(theme.Body.Render(wrap(v.Feedback, c.width-2))))
	}
	if v.Hint != "" {
		lines = append(lines, indent(theme.Hint.Render("Hint: "+wrap(v.Hint, c.width-8))))
	}
	lines = append(lines, "")
	c.println(lines...)
}

func (c *Console) Hint(h tutor.HintResult) {
	if h.Level == 0 {
		c.println(theme.Dim.Render(fmt.Sprintf("No hints for TODO %d.", h.SlotID)))
		return
	}
	head := fmt.Sprintf("Hint %d/%d for TODO %d", h.Level, tutor.MaxHintLevel, h.SlotID)
	if !h.Advanced {
		head += " (last one)"
	}
	c.println(theme.Hint.Render(head+": "+h.Text), "")
}

func (c *Console) Issues(issues []skeleton.MarkerIssue) {
	lines := []string{theme.Warning.Render("Some TODO markers look damaged; those TODOs are paused:")}
	for _, is := range issues {
		lines = append(lines, theme.Warning.Render("  - "+is.String()))
	}
	lines = append(lines, theme.Dim.Render("  Restore the marker lines (or restart the session) to resume them."), "")
	c.println(lines...)
}

func (c *Console) Suggest(s adaptive.ModeSuggestion) {
	c.println(theme.NeedsWork.Render("Suggestion: ")+theme.Body.Render(s.String()), "")
}

func (c *Console) Nudge(slotID int) {
	c.println(theme.Hint.Render(fmt.Sprintf("Stuck on TODO %d? Type \"hint %d\" for a nudge.", slotID, slotID)), "")
}

func (c *Console) Progress(complete, total int) {
	c.println(components.NewProgressBar("Progress", complete, total, c.width).View(), "")
}

func (c *Console) Status(slots []tutor.SlotState, m tutor.Metrics) {
	lines := []string{theme.Title.Render("Status")}
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("  %-3d %-30s %s  attempts %d  hints %d",
			s.ID, truncate(s.Goal, 30), statusLabel(s.Status), s.Attempts, s.HintLevel))
	}
	lines = append(lines, theme.Dim.Render(fmt.Sprintf("  first-try rate %.0f%% · %d hint(s) requested",
		m.SuccessRate()*100, m.HintsRequested)), "")
	c.println(lines...)
}

func (c *Console) Notice(msg string) {
	c.println(theme.Dim.Render(msg))
}

func (c *Console) Summary(text string) {
	c.println(theme.Title.Render("Session summary"), theme.Card.Render(text))
}

func statusLabel(s tutor.Status) string {
	switch s {
	case tutor.StatusComplete:
		return theme.Correct.Render(fmt.Sprintf("%-17s", s))
	case tutor.StatusNeedsImprovement:
		return theme.NeedsWork.Render(fmt.Sprintf("%-17s", s))
	}
	return theme.Dim.Render(fmt.Sprintf("%-17s", s))
}

func shortID(id string) string {
	return truncate(id, 8)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// wrap breaks text at word boundaries so no line exceeds width.
func wrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) > width:
				out = append(out, line)
				line = word
			default:
				line += " " + word
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
