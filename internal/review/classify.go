package review

import (
	"encoding/json"
	"regexp"
	"strings"
)

// verdictOutput is the grading response shape. Correct is the older
// boolean form, accepted when Outcome is absent.
type verdictOutput struct {
	Outcome  string `json:"outcome"`
	Correct  *bool  `json:"correct"`
	Feedback string `json:"feedback"`
	Hint     string `json:"hint"`
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

var outcomeAliases = map[string]Outcome{
	"correct":           OutcomeCorrect,
	"pass":              OutcomeCorrect,
	"passed":            OutcomeCorrect,
	"complete":          OutcomeCorrect,
	"incorrect":         OutcomeIncorrect,
	"wrong":             OutcomeIncorrect,
	"fail":              OutcomeIncorrect,
	"failed":            OutcomeIncorrect,
	"needs_improvement": OutcomeNeedsImprovement,
	"needs_work":        OutcomeNeedsImprovement,
	"partial":           OutcomeNeedsImprovement,
	"partially_correct": OutcomeNeedsImprovement,
	"incomplete":        OutcomeNeedsImprovement,
}

// Classification is the parsed content of a grading response.
type Classification struct {
	Outcome  Outcome
	Feedback string
	Hint     string
}

// Classify maps a raw grading response onto exactly one outcome. The JSON
// may sit inside a markdown fence. It returns false when no outcome can be
// determined.
func Classify(raw []byte) (Classification, bool) {
	text := strings.TrimSpace(string(raw))
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	// A JSON string wrapping the object.
	var inner string
	if json.Unmarshal([]byte(text), &inner) == nil {
		text = strings.TrimSpace(inner)
	}

	var out verdictOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Classification{}, false
	}

	c := Classification{
		Feedback: strings.TrimSpace(out.Feedback),
		Hint:     strings.TrimSpace(out.Hint),
	}
	switch {
	case out.Outcome != "":
		key := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(out.Outcome)))
		o, ok := outcomeAliases[key]
		if !ok {
			return c, false
		}
		c.Outcome = o
	case out.Correct != nil:
		c.Outcome = OutcomeIncorrect
		if *out.Correct {
			c.Outcome = OutcomeCorrect
		}
	default:
		return c, false
	}
	return c, true
}
