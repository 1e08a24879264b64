package search

import "strings"

// Query is one user submission: immutable text plus the deduplicated set of
// platforms it should fan out to. Constructed once per submission, never
// mutated afterwards.
type Query struct {
	text      string
	platforms []Platform
}

// NewQuery builds a Query. The text must be non-empty after trimming and the
// platform set must be non-empty and known.
func NewQuery(text string, platforms []Platform) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrEmptyQuery
	}
	if len(platforms) == 0 {
		return Query{}, ErrNoPlatforms
	}
	seen := make(map[Platform]struct{}, len(platforms))
	deduped := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		deduped = append(deduped, p)
	}
	return Query{text: text, platforms: deduped}, nil
}

// Text returns the query text.
func (q Query) Text() string { return q.text }

// Platforms returns a copy of the selected platform set.
func (q Query) Platforms() []Platform {
	out := make([]Platform, len(q.platforms))
	copy(out, q.platforms)
	return out
}
