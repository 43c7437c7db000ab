package b4s

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// SortedString is a read-only view over a haystack of sorted entries joined
// by a Separator.
//
// The view does not copy or split the haystack. Binary search probes land on
// arbitrary byte offsets and expand outward to the enclosing separators, so
// lookups need no precomputed offsets and no allocation on success.
//
// A SortedString is immutable and safe for concurrent use.
type SortedString struct {
	haystack string
	sep      Separator
}

// NewChecked creates a SortedString after verifying that haystack is
// non-empty, valid UTF-8, and that its entries are in non-decreasing
// byte-wise order.
//
// It returns ErrEmptySource, ErrInvalidEncoding, or an *UnsortedError
// (matching ErrUnsortedSource), checked in that order.
func NewChecked(haystack string, sep Separator) (SortedString, error) {
	if haystack == "" {
		return SortedString{}, ErrEmptySource
	}
	if !utf8.ValidString(haystack) {
		return SortedString{}, ErrInvalidEncoding
	}
	if err := checkSorted(haystack, sep); err != nil {
		return SortedString{}, err
	}
	return SortedString{haystack: haystack, sep: sep}, nil
}

// NewCheckedRune is like NewChecked but accepts the separator as a rune.
// Runes outside the ASCII range fail with ErrUnsupportedSeparator.
func NewCheckedRune(haystack string, sep rune) (SortedString, error) {
	s, err := NewSeparator(sep)
	if err != nil {
		return SortedString{}, err
	}
	return NewChecked(haystack, s)
}

// NewUnchecked creates a SortedString without validating haystack.
//
// The caller is responsible for the invariants NewChecked enforces. If they
// do not hold, Search may miss entries that exist or report unrelated spans,
// but it never panics.
func NewUnchecked(haystack string, sep Separator) SortedString {
	return SortedString{haystack: haystack, sep: sep}
}

// Search looks up needle with a binary search over the haystack entries.
//
// On a match it returns the span of the matching entry and a nil error. If
// several entries equal needle, which one is returned is unspecified.
// Otherwise it returns the span of the last entry compared together with a
// *NotFoundError carrying the same span. A needle containing the separator
// never matches.
func (s SortedString) Search(needle string) (Span, error) {
	h := s.haystack
	sep := s.sep.b

	low, high := 0, len(h)
	start, end := 0, len(h)

	for low < high {
		mid := low + (high-low)/2

		// LastIndexByte returns -1 when there is no separator, giving 0.
		start = strings.LastIndexByte(h[:mid], sep) + 1
		if i := strings.IndexByte(h[mid:], sep); i >= 0 {
			end = mid + i
		} else {
			end = len(h)
		}

		word := h[start:end]
		if !utf8.ValidString(word) {
			span := Span{Start: start, End: end}
			return span, &EncodingError{Span: span}
		}

		switch c := strings.Compare(needle, word); {
		case c < 0:
			if mid == 0 {
				high = 0
			} else {
				high = mid - 1
			}
		case c > 0:
			low = mid + 1
		default:
			return Span{Start: start, End: end}, nil
		}
	}

	last := Span{Start: start, End: end}
	return last, &NotFoundError{Last: last}
}

// Contains reports whether needle is one of the haystack entries.
func (s SortedString) Contains(needle string) bool {
	_, err := s.Search(needle)
	return err == nil
}

// Text returns the haystack bytes covered by span.
// Spans are clamped to the haystack, so Text never panics.
func (s SortedString) Text(span Span) string {
	start := min(max(span.Start, 0), len(s.haystack))
	end := min(max(span.End, start), len(s.haystack))
	return s.haystack[start:end]
}

// Entries returns an iterator over the haystack entries in stored order.
// Entries alias the haystack; no copies are made.
func (s SortedString) Entries() iter.Seq[string] {
	return splitSeq(s.haystack, s.sep)
}

// IsSorted reports whether the entries are in non-decreasing order.
// It is mainly useful for views created with NewUnchecked.
func (s SortedString) IsSorted() bool {
	return checkSorted(s.haystack, s.sep) == nil
}

// Haystack returns the underlying haystack.
func (s SortedString) Haystack() string {
	return s.haystack
}

// Separator returns the entry separator.
func (s SortedString) Separator() Separator {
	return s.sep
}

func (s SortedString) String() string {
	return fmt.Sprintf("SortedString(%q, %q)", s.haystack, s.sep.Rune())
}

// Sort splits haystack on sep, sorts the entries, and joins them again.
//
// The result is suitable for NewChecked whenever it is non-empty and valid
// UTF-8. Sort is idempotent.
func Sort(haystack string, sep Separator) string {
	entries := strings.Split(haystack, sep.String())
	slices.Sort(entries)
	return strings.Join(entries, sep.String())
}

// checkSorted walks adjacent entry pairs and reports the first inversion.
func checkSorted(haystack string, sep Separator) error {
	var prev string
	i := 0
	for entry := range splitSeq(haystack, sep) {
		if i > 0 && entry < prev {
			return &UnsortedError{Index: i, Prev: prev, Next: entry}
		}
		prev = entry
		i++
	}
	return nil
}

// splitSeq yields the entries of haystack split on sep, matching
// strings.Split semantics including leading, trailing, and empty entries.
func splitSeq(haystack string, sep Separator) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := haystack
		for {
			i := strings.IndexByte(rest, sep.b)
			if i < 0 {
				yield(rest)
				return
			}
			if !yield(rest[:i]) {
				return
			}
			rest = rest[i+1:]
		}
	}
}
