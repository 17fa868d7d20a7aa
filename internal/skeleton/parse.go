package skeleton

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type markerSyntax struct {
	begin *regexp.Regexp
	hint  *regexp.Regexp
	end   *regexp.Regexp
}

func newMarkerSyntax(lang Language) markerSyntax {
	c := regexp.QuoteMeta(lang.Comment)
	return markerSyntax{
		begin: regexp.MustCompile(`^([ \t]*)` + c + `[ \t]*>>>[ \t]*TODO[ \t]+(\d+)[ \t]*:[ \t]*(.*?)[ \t]*$`),
		hint:  regexp.MustCompile(`^[ \t]*` + c + `[ \t]*Hint[ \t]+(\d+)[ \t]*:[ \t]*(.*?)[ \t]*$`),
		end:   regexp.MustCompile(`^[ \t]*` + c + `[ \t]*<<<[ \t]*TODO[ \t]+(\d+)[ \t]*$`),
	}
}

// markerPair is one matched BEGIN/END pair found in the text.
type markerPair struct {
	id        int
	goal      string
	hints     [HintLevels]string
	indent    string
	beginLine int
	beginOff  int // offset of the BEGIN line
	afterEnd  int // offset just past the END line
	span      Span
	inBody    bool
	lastHint  int
}

// hintFilter reports whether hint line n with text belongs to the header of
// slot id.
type hintFilter func(id, n int, text string) bool

// headerHint reports whether m, a matched hint line, continues the header
// of p. Hint numbers must increase; a line that breaks the run is body.
func (p *markerPair) headerHint(m []string, accept hintFilter) (int, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= p.lastHint || n > HintLevels {
		return 0, false
	}
	if accept != nil && !accept(p.id, n, m[2]) {
		return 0, false
	}
	return n, true
}

// scanMarkers finds well-formed marker pairs in file order. Any id involved
// in a malformed, duplicated or out-of-order marker is excluded from the
// result and reported instead. When keep is non-nil, pairs whose id it
// rejects are dropped before duplicate and order checks. Hint lines right
// after a BEGIN marker are header when accept, if non-nil, agrees.
func scanMarkers(text string, lang Language, keep func(id int) bool, accept hintFilter) ([]markerPair, []MarkerIssue) {
	syn := newMarkerSyntax(lang)

	var (
		pairs  []markerPair
		issues []MarkerIssue
		open   *markerPair
	)
	bad := map[int]bool{}
	report := func(id int, reason IssueReason, line int) {
		bad[id] = true
		issues = append(issues, MarkerIssue{SlotID: id, Reason: reason, Line: line})
	}

	off := 0
	for i, raw := range strings.SplitAfter(text, "\n") {
		if raw == "" {
			break
		}
		lineNo := i + 1
		next := off + len(raw)
		line := strings.TrimRight(raw, "\r\n")

		var hintN int
		isHint := false
		if open != nil && !open.inBody {
			if m := syn.hint.FindStringSubmatch(line); m != nil {
				if n, ok := open.headerHint(m, accept); ok {
					hintN, isHint = n, true
					open.hints[n-1] = m[2]
				}
			}
		}

		switch {
		case syn.begin.MatchString(line):
			m := syn.begin.FindStringSubmatch(line)
			id, _ := strconv.Atoi(m[2])
			if open != nil {
				report(open.id, IssueUnmatched, open.beginLine)
			}
			open = &markerPair{
				id:        id,
				goal:      m[3],
				indent:    m[1],
				beginLine: lineNo,
				beginOff:  off,
				span:      Span{Start: next, StartLine: lineNo + 1},
			}

		case isHint:
			open.lastHint = hintN
			open.span.Start, open.span.StartLine = next, lineNo+1

		case syn.end.MatchString(line):
			id, _ := strconv.Atoi(syn.end.FindStringSubmatch(line)[1])
			switch {
			case open == nil:
				report(id, IssueUnmatched, lineNo)
			case open.id != id:
				report(open.id, IssueUnmatched, open.beginLine)
				report(id, IssueUnmatched, lineNo)
				open = nil
			default:
				open.span.End = off
				open.span.EndLine = lineNo - 1
				open.span.Known = true
				open.afterEnd = next
				pairs = append(pairs, *open)
				open = nil
			}

		default:
			if open != nil {
				open.inBody = true
			}
		}
		off = next
	}
	if open != nil {
		report(open.id, IssueUnmatched, open.beginLine)
	}

	if keep != nil {
		kept := pairs[:0]
		for _, p := range pairs {
			if keep(p.id) {
				kept = append(kept, p)
			}
		}
		pairs = kept
	}

	seen := map[int]int{}
	for _, p := range pairs {
		seen[p.id]++
		if seen[p.id] > 1 {
			report(p.id, IssueDuplicate, p.beginLine)
		}
	}

	valid := pairs[:0]
	lastID := 0
	for _, p := range pairs {
		if bad[p.id] {
			continue
		}
		if p.id <= lastID {
			report(p.id, IssueOutOfOrder, p.beginLine)
			continue
		}
		lastID = p.id
		valid = append(valid, p)
	}

	sortIssues(issues)
	return valid, issues
}

func sortIssues(issues []MarkerIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].SlotID != issues[j].SlotID {
			return issues[i].SlotID < issues[j].SlotID
		}
		return issues[i].Line < issues[j].Line
	})
}

// Parse recovers a skeleton from text alone: ids, goals, hint lines, spans,
// and the surrounding header, preludes and footer. Slots with broken
// markers are left out and reported.
func Parse(text string, lang Language) (*Skeleton, []MarkerIssue) {
	pairs, issues := scanMarkers(text, lang, nil, nil)

	s := &Skeleton{Language: lang, Text: text}
	prevEnd := 0
	for i, p := range pairs {
		if i == 0 {
			s.Header = text[:p.beginOff]
		}
		slot := Slot{
			ID:     p.id,
			Goal:   p.goal,
			Hints:  p.hints,
			Indent: p.indent,
			Span:   p.span,
		}
		if i > 0 {
			slot.Prelude = text[prevEnd:p.beginOff]
		}
		body := strings.Trim(dedent(text[p.span.Start:p.span.End]), "\n")
		if strings.TrimSpace(body) != lang.Placeholder {
			slot.Starter = body
		}
		s.Slots = append(s.Slots, slot)
		prevEnd = p.afterEnd
	}
	if len(pairs) == 0 {
		s.Header = text
	} else {
		s.Footer = text[prevEnd:]
	}
	return s, issues
}

// Reparse returns a copy of base whose spans are recomputed from text. Every
// base slot without a trustworthy marker pair gets an unknown span and an
// issue; marker pairs for ids base does not have are ignored.
func Reparse(base *Skeleton, text string) (*Skeleton, []MarkerIssue) {
	keep := func(id int) bool {
		_, ok := base.Slot(id)
		return ok
	}
	// Only the hints the slot was rendered with are header; anything else
	// is learner text.
	rendered := func(id, n int, text string) bool {
		slot, ok := base.Slot(id)
		return ok && slot.Hints[n-1] != "" && oneLine(slot.Hints[n-1]) == text
	}
	pairs, issues := scanMarkers(text, base.Language, keep, rendered)

	found := make(map[int]markerPair, len(pairs))
	for _, p := range pairs {
		found[p.id] = p
	}
	reported := map[int]bool{}
	for _, is := range issues {
		reported[is.SlotID] = true
	}

	out := base.Clone()
	out.Text = text
	known := issues[:0]
	for _, is := range issues {
		if _, ok := base.Slot(is.SlotID); ok {
			known = append(known, is)
		}
	}
	issues = known

	for i := range out.Slots {
		slot := &out.Slots[i]
		if p, ok := found[slot.ID]; ok {
			slot.Span = p.span
			continue
		}
		slot.Span = Span{}
		if !reported[slot.ID] {
			issues = append(issues, MarkerIssue{SlotID: slot.ID, Reason: IssueMissing})
		}
	}

	sortIssues(issues)
	return out, issues
}
