package captions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// JSON3 is the YouTube timed-text "json3" payload. Only the fields needed
// for plain text are mapped; everything else is ignored on decode.
type JSON3 struct {
	Events []JSON3Event `json:"events"`
}

type JSON3Event struct {
	TStartMs    *int64     `json:"tStartMs,omitempty"`
	DDurationMs *int64     `json:"dDurationMs,omitempty"`
	Segs        []JSON3Seg `json:"segs,omitempty"`
}

type JSON3Seg struct {
	UTF8 *string `json:"utf8,omitempty"`
}

// Text collects every utf8 segment value in order, joined by single spaces,
// with newlines and whitespace runs collapsed.
func (doc JSON3) Text() string {
	var parts []string
	for _, ev := range doc.Events {
		for _, seg := range ev.Segs {
			if seg.UTF8 != nil {
				parts = append(parts, *seg.UTF8)
			}
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// ParseJSON3 decodes a json3 body. Unknown fields are ignored.
func ParseJSON3(b []byte) (JSON3, error) {
	var doc JSON3
	if len(bytes.TrimSpace(b)) == 0 {
		return doc, fmt.Errorf("parse json3: empty input")
	}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return doc, fmt.Errorf("parse json3: %w", err)
	}
	return doc, nil
}

// ParseJSON3ToText decodes b and returns its plain text.
func ParseJSON3ToText(b []byte) (string, error) {
	doc, err := ParseJSON3(b)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}
