package b4s

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Separator is a single-byte entry delimiter.
//
// Only values in the ASCII range can be constructed. Those bytes never occur
// inside a multi-byte UTF-8 sequence, so scanning a haystack byte by byte for
// the separator always lands on character boundaries. The zero value is the
// NUL separator.
type Separator struct {
	b byte
}

// Common separators.
var (
	Newline = MustSeparator('\n')
	Comma   = MustSeparator(',')
	Tab     = MustSeparator('\t')
	Space   = MustSeparator(' ')
	Hyphen  = MustSeparator('-')
	Null    = MustSeparator(0)
)

// NewSeparator validates r and returns it as a Separator.
// It returns ErrUnsupportedSeparator for runes outside the ASCII range.
func NewSeparator(r rune) (Separator, error) {
	if r < 0 || r >= utf8.RuneSelf {
		return Separator{}, fmt.Errorf("%w: %q", ErrUnsupportedSeparator, r)
	}
	return Separator{b: byte(r)}, nil
}

// SeparatorFromByte validates b and returns it as a Separator.
func SeparatorFromByte(b byte) (Separator, error) {
	return NewSeparator(rune(b))
}

// MustSeparator is like NewSeparator but panics if r is not supported.
// It is intended for package-level variable initialization.
func MustSeparator(r rune) Separator {
	sep, err := NewSeparator(r)
	if err != nil {
		panic(err)
	}
	return sep
}

// Byte returns the encoded separator byte.
func (s Separator) Byte() byte {
	return s.b
}

// Rune returns the separator as a rune.
func (s Separator) Rune() rune {
	return rune(s.b)
}

// String returns the separator as a one-character string.
func (s Separator) String() string {
	return string(rune(s.b))
}

// GoString returns the separator as a quoted Go character literal.
func (s Separator) GoString() string {
	return strconv.QuoteRune(rune(s.b))
}
