// Package decoder turns raw log text into events and derives their dedup identity.
package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/pzwatch/internal/domain/model"
)

// wireEvent is the on-disk shape of one log line.
type wireEvent struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Lines splits text on newlines, trims each line and drops blank ones.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Decode parses one line into a RawEvent.
func Decode(line string) (model.RawEvent, error) {
	var w wireEvent
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return model.RawEvent{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	kind := model.Kind(w.Type)
	if !kind.Valid() {
		return model.RawEvent{}, fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}

	payload := w.Data
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = json.RawMessage("{}")
	}

	return model.RawEvent{
		Kind:      kind,
		Timestamp: literal(w.Timestamp),
		Payload:   payload,
	}, nil
}

// literal returns a JSON scalar as text: strings unquoted, anything else verbatim.
func literal(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// identityFields are the payload fields that disambiguate level_up events
// sharing a timestamp.
type identityFields struct {
	Username json.RawMessage `json:"username"`
	Skill    json.RawMessage `json:"skill"`
	Level    json.RawMessage `json:"level"`
}

// Identity derives the dedup key for ev. It depends only on ev.
//
//	level_up:   level_up_<username>_<skill>_<level>_<timestamp>
//	all others: <kind>_<timestamp>
func Identity(ev model.RawEvent) string {
	if ev.Kind != model.KindLevelUp {
		return string(ev.Kind) + "_" + ev.Timestamp
	}

	var f identityFields
	// An unreadable payload still yields a stable key from kind and timestamp.
	_ = json.Unmarshal(ev.Payload, &f)

	return strings.Join([]string{
		string(ev.Kind),
		literal(f.Username),
		literal(f.Skill),
		literal(f.Level),
		ev.Timestamp,
	}, "_")
}

// Preview returns at most the first n bytes of line, for log output.
func Preview(line string, n int) string {
	if len(line) <= n {
		return line
	}
	return strings.ToValidUTF8(line[:n], "")
}
