package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// UnmarshalFlexible attempts to unmarshal JSON into the target with multiple
// fallback strategies. It first tries standard JSON unmarshaling, then handles
// double-encoded JSON strings, and finally attempts to repair malformed JSON
// before parsing.
//
// Source adapters hand back loosely structured payloads (JSON stored in
// document metadata columns, configuration blobs supplied by callers), so the
// extraction stage must tolerate malformed input instead of failing the query.
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}

	if err := json.Unmarshal([]byte(repaired), out); err == nil {
		return nil
	}

	return fmt.Errorf(
		"unmarshal failed after repair: input=%s repaired=%s",
		input, repaired,
	)
}
