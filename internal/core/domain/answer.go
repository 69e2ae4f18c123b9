package domain

import (
	"encoding/json"
	"strings"
)

// ParseAnswer normalises raw model output. Models asked for JSON often wrap
// it in a markdown code fence; strip the fence, then try to decode. Output
// that is not a JSON object stays as plain text.
func ParseAnswer(raw string) *Answer {
	text := stripCodeFence(strings.TrimSpace(raw))

	var structured map[string]any
	if err := json.Unmarshal([]byte(text), &structured); err == nil {
		answer := &Answer{Text: text, Structured: structured}
		if inner, ok := structured["answer"].(string); ok {
			answer.Text = inner
		}
		return answer
	}

	return &Answer{Text: text}
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	trimmed := strings.TrimPrefix(text, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
