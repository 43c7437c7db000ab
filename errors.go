package b4s

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	// ErrEmptySource is returned when the haystack has zero length.
	ErrEmptySource = errors.New("b4s: empty source")

	// ErrUnsortedSource is returned when the haystack entries are not in
	// non-decreasing order.
	ErrUnsortedSource = errors.New("b4s: source not sorted")

	// ErrUnsupportedSeparator is returned when a separator is not a single-byte
	// (ASCII) character.
	ErrUnsupportedSeparator = errors.New("b4s: unsupported separator")

	// ErrInvalidEncoding is returned when the haystack is not valid UTF-8.
	ErrInvalidEncoding = errors.New("b4s: source is not valid UTF-8")
)

// Search errors.
var (
	// ErrNotFound is returned when the needle is not present in the haystack.
	// The concrete error is a *NotFoundError carrying the last examined span.
	ErrNotFound = errors.New("b4s: not found")

	// ErrEncoding is returned when an examined span does not hold valid UTF-8.
	// It cannot happen for views built with NewChecked.
	ErrEncoding = errors.New("b4s: span is not valid UTF-8")
)

// NotFoundError reports an unsuccessful search.
//
// Last is the span of the final entry compared against the needle. It is not
// an insertion point.
type NotFoundError struct {
	Last Span
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("b4s: not found, last looked at %s", e.Last)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// EncodingError reports a span that did not decode as UTF-8.
type EncodingError struct {
	Span Span
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("b4s: span %s is not valid UTF-8", e.Span)
}

// Is reports whether target is ErrEncoding.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// UnsortedError reports the first pair of adjacent entries out of order.
// Index is the zero-based position of Next.
type UnsortedError struct {
	Index int
	Prev  string
	Next  string
}

func (e *UnsortedError) Error() string {
	return fmt.Sprintf("b4s: source not sorted: entry %d %q sorts before %q", e.Index, e.Next, e.Prev)
}

// Is reports whether target is ErrUnsortedSource.
func (e *UnsortedError) Is(target error) bool {
	return target == ErrUnsortedSource
}
