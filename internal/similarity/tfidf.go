package similarity

import (
	"math"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// Field multiplicative weights (spec.md §4.9).
const (
	titleWeight = 2.0
	tagsWeight  = 1.5
	bodyWeight  = 1.0
)

// vector is a sparse term-frequency vector, keyed by term (stemmed when
// stemming is enabled).
type vector map[string]float64

// buildTermFreq tokenizes and weights n's fields into a single term-frequency
// vector, optionally stemming every field uniformly (spec.md §4.9 "when
// enabled it applies to all fields uniformly").
func buildTermFreq(n *model.Note, stem bool) vector {
	v := make(vector)
	add := func(text string, weight float64) {
		tokens := Tokenize(text)
		if stem {
			tokens = StemAll(tokens)
		}
		for _, t := range tokens {
			v[t] += weight
		}
	}

	add(n.Title, titleWeight)
	if len(n.Tags) > 0 {
		tagText := ""
		for i, tg := range n.Tags {
			if i > 0 {
				tagText += " "
			}
			tagText += tg
		}
		add(tagText, tagsWeight)
	}
	add(n.Body, bodyWeight)

	return v
}

// docFreq counts, per term, the number of documents it appears in.
func docFreq(vectors map[string]vector) map[string]int {
	df := make(map[string]int)
	for _, v := range vectors {
		for term := range v {
			df[term]++
		}
	}
	return df
}

// idf returns the inverse document frequency for term across a corpus of n
// documents, using the smoothed `ln(n/df) + 1` form so terms appearing in
// every document still carry nonzero weight.
func idf(term string, df map[string]int, n int) float64 {
	d := df[term]
	if d == 0 || n == 0 {
		return 0
	}
	return math.Log(float64(n)/float64(d)) + 1
}

// tfidfVector scales a term-frequency vector by each term's idf weight.
func tfidfVector(tf vector, df map[string]int, n int) vector {
	out := make(vector, len(tf))
	for term, freq := range tf {
		out[term] = freq * idf(term, df, n)
	}
	return out
}

// cosine computes cosine similarity between two weighted term vectors.
// Identical vectors (including the empty vector compared to itself) yield
// 1.0; disjoint vocabularies yield 0.0 (spec.md §4.9 laws).
func cosine(a, b vector) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	var dot, normA, normB float64
	for term, av := range a {
		normA += av * av
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
