package categorize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadOracleResponse means the oracle's output could not be parsed as the
// expected assignment array. Nothing is committed from a malformed batch.
var ErrBadOracleResponse = errors.New("categorize: oracle response is not a valid assignment array")

// assignment is one classified transaction as returned by the oracle. ID is
// the 1-based index from the prompt.
type assignment struct {
	ID         int     `json:"id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// cleanModelJSON strips Markdown code fences and surrounding prose when the
// model ignores the output instructions, keeping only the JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the array, keep only from the first '['
	// to the last ']'.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// parseAssignments parses the oracle output into assignments. Any failure is
// ErrBadOracleResponse with the decode detail attached.
func parseAssignments(raw string) ([]assignment, error) {
	clean := cleanModelJSON(raw)

	var out []assignment
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOracleResponse, err)
	}
	return out, nil
}
