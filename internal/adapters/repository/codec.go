package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/okian/pzwatch/internal/domain/players"
)

// snapshotFile is the on-disk layout.
type snapshotFile struct {
	Players orderedPlayers    `json:"player_stats"`
	Cursors map[string]uint64 `json:"file_positions"`
	Markers map[string]string `json:"report_markers,omitempty"`
}

// orderedPlayers encodes as a JSON object whose keys keep slice order.
type orderedPlayers []players.Entry

func (p orderedPlayers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Subject)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Record)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", e.Subject, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *orderedPlayers) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = nil
		return nil
	}

	var byName map[string]players.Record
	if err := json.Unmarshal(b, &byName); err != nil {
		return err
	}
	keys, err := objectKeys(b)
	if err != nil {
		return err
	}

	out := make(orderedPlayers, 0, len(byName))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, players.Entry{Subject: k, Record: byName[k]})
	}
	*p = out
	return nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(b []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("player_stats is not an object")
	}

	var keys []string
	depth := 1
	wantKey := true
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		d, isDelim := tok.(json.Delim)

		if depth == 1 {
			if isDelim && d == '}' {
				return keys, nil
			}
			if wantKey {
				k, ok := tok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected token %v", tok)
				}
				keys = append(keys, k)
				wantKey = false
				continue
			}
			wantKey = true
			if isDelim && (d == '{' || d == '[') {
				depth++
			}
			continue
		}

		if isDelim {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	f := snapshotFile{
		Players: orderedPlayers(s.Players),
		Cursors: s.Cursors,
		Markers: s.Markers,
	}
	if f.Cursors == nil {
		f.Cursors = map[string]uint64{}
	}
	return json.MarshalIndent(f, "", "  ")
}

func decodeSnapshot(b []byte) (Snapshot, error) {
	var f snapshotFile
	if err := json.Unmarshal(b, &f); err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{
		Players: []players.Entry(f.Players),
		Cursors: f.Cursors,
		Markers: f.Markers,
	}
	if s.Cursors == nil {
		s.Cursors = map[string]uint64{}
	}
	if s.Markers == nil {
		s.Markers = map[string]string{}
	}
	return s, nil
}
