package translate

import (
	"encoding/json"
	"strings"

	"github.com/jannikbertram/Rire/messages"
)

// parseBatchResponse extracts the translated mapping for one batch from the
// model's raw text response.
//
// Two attempts are made: first the whole trimmed response is parsed as a
// JSON string-to-string object; if that fails, a single JSON value is
// decoded starting at the first '{' in the response, which tolerates
// surrounding prose and markdown fences. Whichever attempt first yields an
// object wins in full; arrays and other shapes count as failure.
//
// The result is always keyed to the batch: each batch key takes the parsed
// value when present and its source value otherwise, and keys the model
// invented are discarded. When both attempts fail the batch's source values
// are returned unchanged. This silent identity fallback is deliberate: an
// unparseable batch degrades to untranslated text instead of failing the
// whole call.
func parseBatchResponse(text string, batch []messages.Entry) *messages.Map {
	parsed := extractObject(text)

	result := messages.New()
	for _, e := range batch {
		if v, ok := parsed[e.Key]; ok {
			result.Set(e.Key, v)
		} else {
			result.Set(e.Key, e.Value)
		}
	}
	return result
}

// extractObject attempts to recover a string-to-string JSON object from raw
// model output. Returns nil when no valid object can be found.
func extractObject(text string) map[string]string {
	trimmed := strings.TrimSpace(text)

	var obj map[string]string
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj
	}

	idx := strings.Index(text, "{")
	if idx < 0 {
		return nil
	}

	// Decode exactly one value; trailing prose after the object is fine.
	dec := json.NewDecoder(strings.NewReader(text[idx:]))
	obj = nil
	if err := dec.Decode(&obj); err != nil {
		return nil
	}
	return obj
}
