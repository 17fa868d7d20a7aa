package modes

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/tutor"
)

const summaryPrompt = `A learner just finished a %s-mode exercise implementing %q.
Write 2-3 sentences of closing feedback: name what went well, name the one
concept worth revisiting (if any), and suggest a next step. Be specific and
warm without being effusive. Plain text, no headings.`

// Summarize returns the plain-text summary followed by a short closing note
// from the provider. The note is skipped when no provider is configured or
// the call fails.
func (h *handler) Summarize(ctx context.Context, s tutor.Summary) string {
	text := s.Text()
	if h.provider == nil || len(s.Rows) == 0 {
		return text
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeSummary)
	note, err := llm.Complete(ctx, h.provider, fmt.Sprintf(summaryPrompt, h.mode, s.Topic), text, 400)
	if err != nil {
		return text
	}
	return strings.TrimRight(text, "\n") + "\n\n" + note + "\n"
}
