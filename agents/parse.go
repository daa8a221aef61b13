package agents

import (
	"encoding/json"
	"strings"
)

// StripCodeFence removes markdown code fences that models often wrap JSON in.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// decodeReply strips fences from a model reply and decodes it into v.
func decodeReply(reply string, v interface{}) error {
	return json.Unmarshal([]byte(StripCodeFence(reply)), v)
}
