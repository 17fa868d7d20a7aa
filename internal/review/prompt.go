package review

import (
	"fmt"
	"strings"

	"github.com/abhisek/sherpa/internal/paper"
)

const systemPrompt = `You grade a learner's code for one TODO slot in an exercise that implements a machine-learning paper.

Rules:
- Judge ONLY the given slot against its goal. Other slots may still be unfinished.
- Compare against the reference solution for intent, not for exact text. Equivalent implementations are correct.
- You cannot run the code. Judge correctness by reading it.
- If incorrect, identify the specific issue and give a hint, never the answer.
- Be encouraging but honest and keep feedback concise.`

// hintGuidance tailors how specific feedback may be to the learner's hint
// level.
var hintGuidance = [...]string{
	0: "The learner has not asked for hints. Point at the concept only.",
	1: "The learner has seen one hint. You may name the approach.",
	2: "The learner has seen two hints. You may point at the exact line or operation that is wrong.",
	3: "The learner has seen every hint. You may describe the fix step by step, but do not paste the solution.",
}

func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder

	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "TODO %d: %s\n", in.Slot.ID, in.Slot.Goal)
	if in.Slot.Concept != "" {
		fmt.Fprintf(&b, "Concept: %s\n", in.Slot.Concept)
	}
	level := min(max(in.HintLevel, 0), len(hintGuidance)-1)
	fmt.Fprintf(&b, "Hint level: %d\n%s\n", level, hintGuidance[level])

	if in.Instructions != "" {
		b.WriteString("\nGrading style:\n")
		b.WriteString(in.Instructions)
		b.WriteString("\n")
	}

	if ctx := in.Paper.Context(cfg.ContextChars); ctx != "" {
		b.WriteString("\nPaper context:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	lang := in.Language
	if in.Slot.Solution != "" {
		fmt.Fprintf(&b, "\nReference solution:\n```%s\n%s\n```\n", lang, strings.Trim(in.Slot.Solution, "\n"))
	}

	fmt.Fprintf(&b, "\nLearner's attempt:\n```%s\n%s\n```\n", lang, in.Attempt.Text)

	if in.FileText != "" {
		file := in.FileText
		if cfg.FileChars > 0 && len(file) > cfg.FileChars {
			file = paper.Clip(file, cfg.FileChars) + "\n[truncated]"
		}
		fmt.Fprintf(&b, "\nFull file for context:\n```%s\n%s\n```", lang, strings.TrimRight(file, "\n"))
	}

	return strings.TrimRight(b.String(), "\n")
}
