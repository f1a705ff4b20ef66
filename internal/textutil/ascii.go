package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiReplacer = strings.NewReplacer(
	"…", "...",
	"–", "-",
	"—", "-",
	"•", "*",
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	" ", " ",
)

// ASCII folds s to printable ASCII: accents are stripped (è becomes e),
// common typographic punctuation is replaced, and anything else outside the
// ASCII range is dropped.
func ASCII(s string) string {
	s = asciiReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII && (r >= ' ' || r == '\t') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Ternary returns ifTrue when cond holds and ifFalse otherwise.
func Ternary[T any](cond bool, ifTrue, ifFalse T) T {
	if cond {
		return ifTrue
	}
	return ifFalse
}
