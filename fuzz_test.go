package b4s

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzSearchUnchecked feeds arbitrary haystacks to an unchecked view. Almost
// none of them are sorted, so only totality is checked: no panics and spans
// that always lie inside the haystack.
func FuzzSearchUnchecked(f *testing.F) {
	f.Add(alphabet, "mno", byte(','))
	f.Add(",a", "", byte(','))
	f.Add("Hündin\nKatze\nMäuschen", "Mäuschen", byte('\n'))
	f.Add("\xff\xfe,abc", "abc", byte(','))
	f.Add("", "", byte(0))

	f.Fuzz(func(t *testing.T, haystack, needle string, sepByte byte) {
		sep, err := SeparatorFromByte(sepByte & 0x7f)
		if err != nil {
			t.Fatalf("SeparatorFromByte(%#x) error = %v", sepByte&0x7f, err)
		}
		ss := NewUnchecked(haystack, sep)

		span, err := ss.Search(needle)
		if span.Start < 0 || span.Start > span.End || span.End > len(haystack) {
			t.Fatalf("Search(%q) span %s out of bounds for haystack of %d bytes", needle, span, len(haystack))
		}
		if err == nil && ss.Text(span) != needle {
			t.Fatalf("Search(%q) matched %q", needle, ss.Text(span))
		}
	})
}

// FuzzSearchSorted sorts arbitrary input and checks that every non-empty
// entry is found again.
func FuzzSearchSorted(f *testing.F) {
	f.Add("c,b,a", byte(','))
	f.Add("Katze\nHündin\nMäuschen\nHund", byte('\n'))
	f.Add("b,,a,,", byte(','))

	f.Fuzz(func(t *testing.T, input string, sepByte byte) {
		if !utf8.ValidString(input) {
			t.Skip()
		}
		sep, err := SeparatorFromByte(sepByte & 0x7f)
		if err != nil {
			t.Fatalf("SeparatorFromByte(%#x) error = %v", sepByte&0x7f, err)
		}

		sorted := Sort(input, sep)
		if Sort(sorted, sep) != sorted {
			t.Fatalf("Sort is not idempotent for %q", input)
		}
		if sorted == "" {
			return
		}
		ss, err := NewChecked(sorted, sep)
		if err != nil {
			t.Fatalf("NewChecked(Sort(%q)) error = %v", input, err)
		}

		for entry := range strings.SplitSeq(sorted, sep.String()) {
			if entry == "" {
				// A leading empty entry is unreachable, see TestSearch_LeadingEmptyEntry.
				continue
			}
			span, err := ss.Search(entry)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", entry, err)
			}
			if got := ss.Text(span); got != entry {
				t.Fatalf("Search(%q) matched %q", entry, got)
			}
		}
	})
}
