package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the JSON object out of a model response. Models
// frequently wrap JSON in markdown code fences or surround it with prose, so
// the fences are stripped first and the result is sliced from the first '{'
// to the last '}'.
func ExtractJSONObject(text string) (string, error) {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		// Remove opening fence (with optional language tag)
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		// Remove closing fence
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")

	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}

	candidate := cleaned[start : end+1]

	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("response contains malformed JSON")
	}

	return candidate, nil
}
