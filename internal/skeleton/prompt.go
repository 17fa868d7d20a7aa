package skeleton

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an ML engineer writing a hands-on exercise that teaches a learner to implement a technique from a research paper.

Rules:
- Produce a single source file split into ordered TODO slots. The learner fills in each slot body in order.
- Each slot is one logical step of 5-15 lines when complete and builds on the previous one.
- Each goal is ONE line that states WHAT to achieve, not how. Never paste the solution into a goal.
- Each slot has exactly 3 hints of increasing specificity: (1) the concept to think about, (2) the approach to take, (3) a near-solution nudge without the full code.
- Put shared code (imports, class declaration, helper signatures) in the header and slot preludes. Do NOT write TODO markers yourself; they are added around each slot body.
- The prelude of a slot is the code immediately before its body, such as the enclosing method signature.
- Provide a correct reference solution for every slot. It is used for grading and never shown to the learner.
- Use realistic variable names and keep the file self-contained.`

// buildUserMessage constructs the user message for skeleton generation.
func buildUserMessage(in GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Language: %s\n", in.Language.Name)
	fmt.Fprintf(&b, "Number of slots: between %d and %d\n", cfg.MinSlots, cfg.MaxSlots)
	fmt.Fprintf(&b, "Empty slot body placeholder: %s\n", in.Language.Placeholder)

	if in.Instructions != "" {
		b.WriteString("\nExercise style:\n")
		b.WriteString(in.Instructions)
		b.WriteString("\n")
	}

	if ctx := in.Paper.Context(cfg.ContextChars); ctx != "" {
		b.WriteString("\nPaper context:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	if len(in.PriorErrors) > 0 {
		b.WriteString("\nYour previous attempt was rejected:\n")
		for i, e := range in.PriorErrors {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e)
		}
		b.WriteString("Fix these problems in this attempt.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
