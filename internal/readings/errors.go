package readings

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReading is the sentinel wrapped by every parse failure.
	ErrInvalidReading = errors.New("invalid reading")
	// ErrReadingCount marks a reading source whose size does not match the plan.
	ErrReadingCount = errors.New("reading count mismatch")
)

// UnknownBookError reports a book token that the book table cannot resolve.
type UnknownBookError struct {
	Token string
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("invalid book abbreviation: %s", e.Token)
}

func (e *UnknownBookError) Unwrap() error {
	return ErrInvalidReading
}

// ChapterError reports a chapter designator that is not a number, an
// inclusive range, or a comma-separated list of numbers.
type ChapterError struct {
	Token  string
	Reason string
}

func (e *ChapterError) Error() string {
	return fmt.Sprintf("invalid chapter designator %q: %s", e.Token, e.Reason)
}

func (e *ChapterError) Unwrap() error {
	return ErrInvalidReading
}

// CountError reports a reading source with the wrong number of entries.
type CountError struct {
	Expected int
	Got      int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("incorrect number of readings: expected %d, got %d", e.Expected, e.Got)
}

func (e *CountError) Unwrap() error {
	return ErrReadingCount
}
