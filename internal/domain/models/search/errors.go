package search

import "errors"

var (
	// ErrEmptyQuery rejects a submission with no query text.
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrNoPlatforms rejects a search submission with no platforms selected.
	ErrNoPlatforms = errors.New("no platforms selected")
)
