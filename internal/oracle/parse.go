package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse decodes the model's reply into records. The accepted grammar
// is a JSON array of objects with text/category/type/justification fields,
// optionally wrapped in a single Markdown code fence. Anything else yields a
// *ParseError.
func ParseResponse(raw string) ([]Record, error) {
	content := stripCodeFence(strings.TrimSpace(raw))

	var records []Record
	if err := json.Unmarshal([]byte(content), &records); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	// A record without a span is unusable downstream; reject the response
	// rather than silently defaulting fields.
	for i, r := range records {
		if r.Text == "" {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("record %d has empty text", i)}
		}
	}

	return records, nil
}

// stripCodeFence removes a surrounding ```json … ``` (or plain ```) wrapper.
// Text that is not fence-wrapped passes through unchanged.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
