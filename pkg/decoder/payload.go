package decoder

import (
	"strings"

	"github.com/tidwall/gjson"
)

const doneSentinel = "[DONE]"

func isDone(payload string) bool {
	return strings.HasPrefix(strings.TrimSpace(payload), doneSentinel)
}

// extractText returns the text carried by a completion payload. Two shapes
// are recognized, in order of precedence:
//
//	{"content": "..."}
//	{"choices": [{"text": "..."}]}
//
// An empty content string defers to choices when both are present.
// ok is false for any other JSON value.
func extractText(payload string) (string, bool) {
	content := gjson.Get(payload, "content")
	if content.Type == gjson.String && content.Str != "" {
		return content.Str, true
	}
	if text := gjson.Get(payload, "choices.0.text"); text.Type == gjson.String {
		return text.Str, true
	}
	if content.Type == gjson.String {
		return "", true
	}
	return "", false
}
