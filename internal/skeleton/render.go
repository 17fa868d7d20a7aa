package skeleton

import (
	"fmt"
	"strings"
)

// RenderOptions controls how much scaffolding is written into the file.
type RenderOptions struct {
	// HintCount is how many hint lines are printed under each BEGIN
	// marker, clamped to [0, HintLevels].
	HintCount int
}

// DefaultRenderOptions renders the full hint ladder.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{HintCount: HintLevels}
}

// lineWriter tracks the 1-based line number of the next byte written.
type lineWriter struct {
	b    strings.Builder
	line int
}

func (w *lineWriter) write(s string) {
	w.b.WriteString(s)
	w.line += strings.Count(s, "\n")
}

// Render serializes s to file text. It records each slot's span and stores
// the result in s.Text.
func Render(s *Skeleton, opts RenderOptions) string {
	hints := min(max(opts.HintCount, 0), HintLevels)
	c := s.Language.Comment
	w := &lineWriter{line: 1}

	w.write(withNewline(s.Header))

	for i := range s.Slots {
		slot := &s.Slots[i]
		w.write(withNewline(slot.Prelude))
		w.write(fmt.Sprintf("%s%s >>> TODO %d: %s\n", slot.Indent, c, slot.ID, oneLine(slot.Goal)))
		for n := 0; n < hints; n++ {
			if slot.Hints[n] == "" {
				continue
			}
			w.write(fmt.Sprintf("%s%s Hint %d: %s\n", slot.Indent, c, n+1, oneLine(slot.Hints[n])))
		}

		start, startLine := w.b.Len(), w.line
		w.write(indentBlock(s.InitialBody(slot), slot.Indent))
		slot.Span = Span{
			Start:     start,
			End:       w.b.Len(),
			StartLine: startLine,
			EndLine:   w.line - 1,
			Known:     true,
		}

		w.write(fmt.Sprintf("%s%s <<< TODO %d\n", slot.Indent, c, slot.ID))
	}

	w.write(s.Footer)

	s.Text = w.b.String()
	return s.Text
}

// indentBlock dedents body, prefixes every non-blank line with indent and
// terminates each line with a newline.
func indentBlock(body, indent string) string {
	body = strings.Trim(dedent(body), "\n")
	if body == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			b.WriteString(indent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// dedent removes the longest common leading whitespace of non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
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
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
