// Package skeleton models a generated exercise file: an ordered set of TODO
// slots bounded by comment markers, how that model is rendered to text, and
// how slot spans are recovered from text the learner has since edited.
package skeleton

import (
	"fmt"
	"time"
)

// HintLevels is the fixed length of every slot's hint ladder.
const HintLevels = 3

// Span locates a slot body in the current file text. Start and End are byte
// offsets (End exclusive); StartLine and EndLine are 1-based and inclusive.
// An empty body has EndLine == StartLine-1.
type Span struct {
	Start     int
	End       int
	StartLine int
	EndLine   int
	Known     bool
}

// Overlaps reports whether two known spans share any byte.
func (s Span) Overlaps(o Span) bool {
	if !s.Known || !o.Known {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Slot is one fill-in-the-blank unit of the exercise.
type Slot struct {
	ID      int
	Goal    string
	Hints   [HintLevels]string
	Concept string

	// Prelude is emitted verbatim before the slot's BEGIN marker, e.g. the
	// signature of the method the slot lives in.
	Prelude string
	Indent  string

	// Starter is the initial body. Empty means the language placeholder.
	Starter string

	// Solution is the reference implementation handed to the grader. It is
	// never rendered into the file.
	Solution string

	Span Span
}

// Skeleton is one generated exercise.
type Skeleton struct {
	Topic    string
	Title    string
	Language Language
	Header   string
	Footer   string
	Slots    []Slot
	Text     string
	Path     string
}

// Slot returns the slot with the given id.
func (s *Skeleton) Slot(id int) (*Slot, bool) {
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			return &s.Slots[i], true
		}
	}
	return nil, false
}

// Body returns the current body text of a slot, or false when the slot is
// unknown or its span is not known.
func (s *Skeleton) Body(id int) (string, bool) {
	slot, ok := s.Slot(id)
	if !ok || !slot.Span.Known {
		return "", false
	}
	if slot.Span.Start < 0 || slot.Span.End > len(s.Text) || slot.Span.Start > slot.Span.End {
		return "", false
	}
	return s.Text[slot.Span.Start:slot.Span.End], true
}

// IDs returns the slot ids in file order.
func (s *Skeleton) IDs() []int {
	ids := make([]int, len(s.Slots))
	for i, slot := range s.Slots {
		ids[i] = slot.ID
	}
	return ids
}

// Clone returns a deep copy.
func (s *Skeleton) Clone() *Skeleton {
	c := *s
	c.Slots = make([]Slot, len(s.Slots))
	copy(c.Slots, s.Slots)
	return &c
}

// InitialBody is the body a slot is rendered with: its starter, or the
// placeholder when there is none.
func (s *Skeleton) InitialBody(slot *Slot) string {
	if slot.Starter != "" {
		return slot.Starter
	}
	return s.Language.Placeholder
}

// Attempt is the learner's text inside one slot at a settled save.
type Attempt struct {
	SlotID    int
	Text      string
	Timestamp time.Time

	// Changed lists every slot whose body differed in the same save.
	Changed []int
}

// IssueReason classifies a marker problem.
type IssueReason string

const (
	IssueMissing    IssueReason = "missing"
	IssueUnmatched  IssueReason = "unmatched"
	IssueDuplicate  IssueReason = "duplicate"
	IssueOutOfOrder IssueReason = "out_of_order"
)

// MarkerIssue reports a slot whose boundary markers could not be trusted.
// The slot's span is unknown until the file is regenerated.
type MarkerIssue struct {
	SlotID int
	Reason IssueReason
	Line   int // 1-based; 0 when the marker is absent altogether
}

func (m MarkerIssue) String() string {
	switch m.Reason {
	case IssueMissing:
		return fmt.Sprintf("TODO %d: markers missing", m.SlotID)
	case IssueDuplicate:
		return fmt.Sprintf("TODO %d: duplicate markers at line %d", m.SlotID, m.Line)
	case IssueOutOfOrder:
		return fmt.Sprintf("TODO %d: markers out of order at line %d", m.SlotID, m.Line)
	default:
		return fmt.Sprintf("TODO %d: unmatched marker at line %d", m.SlotID, m.Line)
	}
}
