package similarity

import "strings"

// stemSuffixes are applied longest-first; each maps a suffix to its
// replacement when the stem that would remain has at least minStemLen
// letters. This is a small Porter-style reducer, not the full Porter
// algorithm (spec.md §4.9 marks stemming optional and no repo in the
// teacher pack imports a stemmer directly, so it is hand-rolled rather than
// pulling in an unGrounded dependency; see DESIGN.md).
var stemSuffixes = []struct {
	suffix, replacement string
}{
	{"ational", "ate"},
	{"ization", "ize"},
	{"fulness", "ful"},
	{"iveness", "ive"},
	{"ousness", "ous"},
	{"edly", ""},
	{"ing", ""},
	{"ed", ""},
	{"ousli", "ous"},
	{"ies", "y"},
	{"es", ""},
	{"ly", ""},
	{"ness", ""},
	{"ful", ""},
	{"ive", ""},
	{"s", ""},
}

const minStemLen = 3

// Stem reduces a single lowercased token to an approximate root form by
// stripping at most one suffix. It is not idempotent in general: a second
// pass can strip a further suffix ("classes" -> "class" -> "clas").
func Stem(word string) string {
	for _, rule := range stemSuffixes {
		if strings.HasSuffix(word, rule.suffix) {
			stem := strings.TrimSuffix(word, rule.suffix)
			if len(stem) >= minStemLen {
				return stem + rule.replacement
			}
		}
	}
	return word
}

// StemAll applies Stem to every token.
func StemAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Stem(t)
	}
	return out
}
