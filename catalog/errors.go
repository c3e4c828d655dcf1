package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound is returned when a required input path does not exist.
	ErrInputNotFound = errors.New("input not found")
	// ErrEncoding is returned when no candidate encoding could parse a source.
	ErrEncoding = errors.New("no candidate encoding could parse input")
	// ErrSchema is returned when a required column is absent from a header.
	ErrSchema = errors.New("required column missing")
	// ErrUnreadable is returned when a source yields no header or no parseable rows.
	ErrUnreadable = errors.New("input unreadable")
)

// RowWarning records a malformed row that was skipped or repaired while loading.
type RowWarning struct {
	Source  string
	Row     int
	Message string
}

func (w RowWarning) String() string {
	if w.Row <= 0 {
		return fmt.Sprintf("%s: %s", w.Source, w.Message)
	}
	return fmt.Sprintf("%s row %d: %s", w.Source, w.Row, w.Message)
}

// MissingColumnError builds an ErrSchema error naming the source and the tried candidates.
func MissingColumnError(source string, candidates []string) error {
	return fmt.Errorf("%w: %s has none of %q", ErrSchema, source, candidates)
}
