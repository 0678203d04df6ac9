// Package decoder extracts a JSON object from free-form model output.
// The upstream LLM is asked for bare JSON but answers however it likes:
// fenced code blocks, leading prose, or nothing parseable at all. The one
// contract that matters here is that a decode failure never escapes as an
// error condition the caller has to branch on — the caller always receives a
// usable mapping.
package decoder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError carries the original parse error together with the offending
// text, for logging and for the sentinel mapping's error field.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode model output: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode strips conversational wrapping from raw and unmarshals the result.
// On success the returned error is nil. On failure the error is a
// *DecodeError and the returned mapping is a sentinel carrying an "error" key
// plus safe defaults for the fields the normalizer consumes — the mapping is
// always non-nil and always safe to hand downstream.
func Decode(raw string) (map[string]any, error) {
	cleaned := StripFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		decodeErr := &DecodeError{Raw: raw, Err: err}
		return map[string]any{
			"error":      decodeErr.Error(),
			"ticker":     "UNKNOWN",
			"direction":  "unknown",
			"pnl_amount": 0.0,
		}, decodeErr
	}
	return fields, nil
}

// StripFences removes a leading code-fence line (``` optionally followed by a
// language tag) and the trailing fence. Input without a leading fence is only
// trimmed.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// drop the fence line itself, language tag included
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
