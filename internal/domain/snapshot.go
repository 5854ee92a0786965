package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TagStyle is how a tag looked when a day was saved.
type TagStyle struct {
	Color    string `json:"color"`
	Priority int    `json:"priority"`
}

// TagSnapshot maps tag names to their style at save time.
// It is stored alongside the day so later edits to the registry do not change history.
type TagSnapshot map[string]TagStyle

// SnapshotOf builds a snapshot from a set of tags.
func SnapshotOf(tags []*Tag) TagSnapshot {
	snap := make(TagSnapshot, len(tags))
	for _, t := range tags {
		snap[t.Name] = t.Style()
	}
	return snap
}

// Names returns the snapshot's tag names ordered by priority descending, then name.
func (s TagSnapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := s[names[i]].Priority, s[names[j]].Priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}

// EncodeSnapshot serializes a snapshot as a JSON object with sorted keys.
func EncodeSnapshot(s TagSnapshot) (string, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode tag snapshot: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshot parses a stored snapshot. Blank, "{}", "null" and "None" decode to an empty snapshot.
func DecodeSnapshot(raw string) (TagSnapshot, error) {
	switch strings.TrimSpace(raw) {
	case "", "{}", "null", "None":
		return TagSnapshot{}, nil
	}
	var s TagSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode tag snapshot: %w", err)
	}
	if s == nil {
		s = TagSnapshot{}
	}
	return s, nil
}

// EncodeTagList joins tag names with commas. Names are expected to be sanitized.
func EncodeTagList(names []string) string {
	return strings.Join(names, ",")
}

// DecodeTagList splits a stored tag list, dropping blank entries.
func DecodeTagList(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
