package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoChoices = errors.New("no response choices returned")

// decodeJSON unmarshals the JSON payload embedded in a model reply.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON returns the JSON inside a reply that may wrap it in a markdown
// code fence or surround it with prose. Unrecognized input is returned as is.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(s, fence)
		if start == -1 {
			continue
		}
		body := s[start+len(fence):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.Trim(body[:end], "\r\n")
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}
