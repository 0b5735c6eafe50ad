// Package similarity implements the field-weighted TF/IDF similarity engine
// (spec.md §4.9): tokenized, weighted term vectors per note, a corpus-wide
// document-frequency index, and cosine similarity scoring for
// `find_similar`. Grounded on the teacher's `internal/idgen` tokenizer
// (regex word-splitting plus a stopword filter, internal/idgen/idgen.go
// "Slugify") and KittClouds-Go-Machine-n's stopword-library usage
// (pkg/scanner/discovery/registry.go), which supplied the dependency choice
// for a richer stopword set than idgen's own small map.
package similarity

import (
	"regexp"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

var wordRegex = regexp.MustCompile(`[a-z0-9]+`)

var englishStopwords = stopwords.MustGet("en")

// Tokenize lowercases s, splits it into word runs, and drops stopwords and
// single-character tokens.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	words := wordRegex.FindAllString(lower, -1)

	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if englishStopwords.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}
