// Package b4s provides binary search over a single string of sorted entries
// joined by a one-byte separator.
//
// A word list such as "apple\nfig\npear" can be searched in place without
// splitting it into a []string first. [SortedString] probes byte offsets and
// expands each probe to the enclosing separators, so only the haystack and a
// handful of integers are needed per lookup.
//
// # Construction
//
// [NewChecked] verifies that the haystack is non-empty, valid UTF-8 and
// sorted in byte-wise order; [NewUnchecked] skips these checks. Use [Sort] to
// prepare unsorted input:
//
//	ss, err := b4s.NewChecked(b4s.Sort(words, b4s.Newline), b4s.Newline)
//	if err != nil {
//	    return err
//	}
//	span, err := ss.Search("fig")
//
// # Separators
//
// Separators are restricted to single-byte (ASCII) characters by the
// [Separator] type. Such bytes never occur inside a multi-byte UTF-8
// character, so byte-wise scanning always stops on character boundaries.
//
// # Results
//
// A successful [SortedString.Search] returns the [Span] of the matching
// entry. A miss returns a [*NotFoundError] holding the span of the last
// entry compared; it is a diagnostic, not an insertion point. When several
// entries are equal, which one is found is unspecified.
//
// Loading word lists from files, HTTP, or OCI registries lives in the
// source subpackage.
package b4s
