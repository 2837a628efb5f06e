package note

import (
	"strings"

	"modernnotes/internal/model"
)

// Query selects notes from an already loaded list.
type Query struct {
	Text  string // case-insensitive substring of title or content
	TagID string // empty means any tag
}

// Matches reports whether n satisfies q.
func (q Query) Matches(n model.Note) bool {
	if q.TagID != "" && !n.HasTag(q.TagID) {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	return strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle)
}

// Filter returns the notes matching q in their original order. notes is not modified.
func Filter(notes []model.Note, q Query) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if q.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
