// Package detect turns settled file changes into at most one attempt: the
// slot the learner edited most recently, or else a slot whose text has not
// been reviewed yet.
package detect

import (
	"sort"
	"strings"
	"time"

	"github.com/abhisek/sherpa/internal/skeleton"
)

// Result is the outcome of one Detect call.
type Result struct {
	// Attempt is nil when no tracked slot changed.
	Attempt *skeleton.Attempt

	// Changed lists the slots edited in this change whose text has not
	// been reviewed, in id order.
	Changed []int

	// Deferred lists slots with unreviewed text that were not picked, in
	// id order. They are offered again on a later change.
	Deferred []int

	// Issues are marker problems first seen in this change.
	Issues []skeleton.MarkerIssue

	// Current is the reparsed skeleton for the new text.
	Current *skeleton.Skeleton
}

// Detector compares successive file texts against a base skeleton. It is
// not safe for concurrent use; the runner loop is its only caller.
type Detector struct {
	base     *skeleton.Skeleton
	degraded map[int]bool
	// recorded holds the normalized body last settled for each slot.
	recorded map[int]string
	now      func() time.Time
}

// New creates a Detector for base.
func New(base *skeleton.Skeleton) *Detector {
	return &Detector{base: base, degraded: map[int]bool{}, recorded: map[int]string{}, now: time.Now}
}

// Reset swaps in a regenerated skeleton and clears degraded slots and
// recorded bodies.
func (d *Detector) Reset(base *skeleton.Skeleton) {
	d.base = base
	d.degraded = map[int]bool{}
	d.recorded = map[int]string{}
}

// Record marks body as settled for slot id. Until the slot's text differs
// from body again it is not offered as an attempt. Callers record a body
// once a verdict for it has been applied, and not when a review was
// abandoned.
func (d *Detector) Record(id int, body string) {
	d.recorded[id] = Normalize(body)
}

// Recorded returns the body last recorded for slot id.
func (d *Detector) Recorded(id int) (string, bool) {
	body, ok := d.recorded[id]
	return body, ok
}

// Degraded returns the ids of slots excluded from diffing, sorted.
func (d *Detector) Degraded() []int {
	ids := make([]int, 0, len(d.degraded))
	for id := range d.degraded {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Detect compares newText with the recorded body of every slot. A slot is
// outstanding when its normalized body is neither empty, the untouched
// initial body, nor the body last recorded for it.
//
// Outstanding slots edited in this change (their body also differs from
// oldText) take priority: the one whose last differing byte sits furthest
// into the new text wins, ties going to the highest id. When no outstanding
// slot was edited, the lowest outstanding id is picked so that text left
// unreviewed by an earlier change is reviewed on a later one.
func (d *Detector) Detect(oldText, newText string) Result {
	prev, _ := skeleton.Reparse(d.base, oldText)
	cur, issues := skeleton.Reparse(d.base, newText)

	res := Result{Current: cur}
	for _, is := range issues {
		if !d.degraded[is.SlotID] {
			d.degraded[is.SlotID] = true
			res.Issues = append(res.Issues, is)
		}
	}

	var outstanding []int
	bestID, bestPos := 0, -1
	bodies := map[int]string{}
	for _, slot := range cur.Slots {
		if d.degraded[slot.ID] {
			continue
		}
		newBody, ok := cur.Body(slot.ID)
		if !ok {
			continue
		}
		norm := Normalize(newBody)
		if d.isInitial(slot.ID, norm) {
			continue
		}
		if last, ok := d.recorded[slot.ID]; ok && last == norm {
			continue
		}
		outstanding = append(outstanding, slot.ID)
		bodies[slot.ID] = norm

		oldBody, ok := prev.Body(slot.ID)
		if !ok || Normalize(oldBody) == norm {
			continue
		}
		res.Changed = append(res.Changed, slot.ID)
		pos := slot.Span.Start + lastDiff(oldBody, newBody)
		if pos > bestPos || (pos == bestPos && slot.ID > bestID) {
			bestID, bestPos = slot.ID, pos
		}
	}

	if bestID == 0 && len(outstanding) > 0 {
		bestID = outstanding[0]
	}
	if bestID == 0 {
		return res
	}

	for _, id := range outstanding {
		if id != bestID {
			res.Deferred = append(res.Deferred, id)
		}
	}
	res.Attempt = &skeleton.Attempt{
		SlotID:    bestID,
		Text:      bodies[bestID],
		Timestamp: d.now(),
		Changed:   res.Changed,
	}
	return res
}

// isInitial reports whether a normalized body is empty or equal to what the
// slot was rendered with.
func (d *Detector) isInitial(id int, norm string) bool {
	if norm == "" {
		return true
	}
	slot, ok := d.base.Slot(id)
	if !ok {
		return true
	}
	return norm == Normalize(d.base.InitialBody(slot)) || norm == d.base.Language.Placeholder
}

// Normalize strips trailing whitespace from every line and drops leading and
// trailing blank lines. Leading indentation is kept.
func Normalize(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return dedent(strings.Join(lines[start:end], "\n"))
}

// dedent removes indentation shared by every non-blank line so that a body
// compares equal regardless of the slot's indent.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	prefix := ""
	first := true
	for _, l := range lines {
		if l == "" {
			continue
		}
		lead := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = lead, false
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return text
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}
	return strings.Join(lines, "\n")
}

// lastDiff returns the offset in b just past the last byte where a and b
// differ, found by trimming their common suffix.
func lastDiff(a, b string) int {
	i, j := len(a), len(b)
	for i > 0 && j > 0 && a[i-1] == b[j-1] {
		i--
		j--
	}
	return j
}
