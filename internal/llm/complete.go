package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Complete is the plain-text form of Generate: it sends prompt with the
// given context block appended and returns the model's prose reply.
func Complete(ctx context.Context, p Provider, prompt, contextText string, maxTokens int) (string, error) {
	var b strings.Builder
	b.WriteString(prompt)
	if contextText != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(contextText)
	}

	resp, err := p.Generate(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: b.String()}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(resp.Content))
	var quoted string
	if strings.HasPrefix(text, `"`) && json.Unmarshal(resp.Content, &quoted) == nil {
		text = strings.TrimSpace(quoted)
	}
	if text == "" {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}
