package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// codeFence matches a ```json ... ``` or bare ``` ... ``` wrapper around
// a structured LLM response.
var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripCodeFence removes an optional markdown code fence wrapping raw,
// tolerating the common "```json\n{...}\n```" shape LLMs produce even
// when asked for bare JSON.
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// ParseStructured unmarshals raw (after stripping any code fence) into
// out. Callers on the safety-critical path should use ParseStructured
// combined with FailSafe on error — never treat a parse failure as an
// implicit approval.
func ParseStructured(raw string, out any) error {
	return json.Unmarshal([]byte(StripCodeFence(raw)), out)
}
