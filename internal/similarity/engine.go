package similarity

import (
	"sort"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// Match is one scored result from FindSimilar.
type Match struct {
	ID    string
	Score float64
}

// Engine holds the corpus-wide TF/IDF vectors built from a snapshot of
// notes. Rebuild it whenever the corpus changes; it does not track
// individual note updates.
type Engine struct {
	vectors map[string]vector
}

// Build constructs an Engine from notes, optionally stemming every field
// uniformly (spec.md §4.9).
func Build(notes []*model.Note, stem bool) *Engine {
	tf := make(map[string]vector, len(notes))
	for _, n := range notes {
		tf[n.ID] = buildTermFreq(n, stem)
	}
	df := docFreq(tf)

	vectors := make(map[string]vector, len(notes))
	for id, v := range tf {
		vectors[id] = tfidfVector(v, df, len(notes))
	}

	return &Engine{vectors: vectors}
}

// Similarity returns the cosine-like similarity between two note ids
// already present in the corpus; self-similarity is always 1.0.
func (e *Engine) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return cosine(e.vectors[a], e.vectors[b])
}

// FindSimilar returns the top-k notes most similar to id whose score is at
// least threshold, sorted by descending score then ascending id
// (spec.md §4.9 "find_similar(id, k, threshold)"). id itself is excluded.
func (e *Engine) FindSimilar(id string, k int, threshold float64) []Match {
	target, ok := e.vectors[id]
	if !ok {
		return nil
	}

	var matches []Match
	for other, v := range e.vectors {
		if other == id {
			continue
		}
		score := cosine(target, v)
		if score >= threshold {
			matches = append(matches, Match{ID: other, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
