package llm

import (
	"bytes"
	"encoding/json"
)

// defaultMaxTokens applies when a request leaves MaxTokens unset; some
// vendors reject a zero limit.
const defaultMaxTokens = 1024

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// finishResponse applies the checks shared by every vendor adapter. With a
// schema, the content must be complete JSON that validates; output cut at
// the token limit is reported as truncated rather than invalid so callers
// can tell a budget problem from a model that ignored the format.
func finishResponse(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if req.Schema != nil {
		content = stripFences(content)
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add around JSON even in structured-output mode.
func stripFences(content json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(content)
	if !bytes.HasPrefix(b, []byte("```")) {
		return content
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	} else {
		return content
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return json.RawMessage(bytes.TrimSpace(b))
}
