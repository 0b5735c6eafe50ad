package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

func note(id, title string, tags []string, body string) *model.Note {
	return &model.Note{ID: id, Title: title, Tags: tags, Body: body}
}

// Example E: two "Machine Learning" notes with overlapping tags should be
// more similar to each other than either is to an unrelated note; each
// note's self-similarity is 1.0.
func TestFindSimilar_ExampleE(t *testing.T) {
	notes := []*model.Note{
		note("ml1", "Machine Learning", []string{"ai", "algorithms"}, "Gradient descent optimizes model parameters."),
		note("ml2", "Machine Learning", []string{"ai", "data"}, "Neural networks learn from large datasets."),
		note("cooking", "Cooking Recipes", []string{"food", "recipes"}, "Simmer the sauce and season with herbs."),
	}
	e := Build(notes, false)

	mlSim := e.Similarity("ml1", "ml2")
	cookingSim := e.Similarity("ml1", "cooking")

	assert.Greater(t, mlSim, cookingSim)
	assert.Equal(t, 1.0, e.Similarity("ml1", "ml1"))
	assert.Equal(t, 1.0, e.Similarity("ml2", "ml2"))
}

func TestSimilarity_SymmetricAndDisjointVocab(t *testing.T) {
	notes := []*model.Note{
		note("a", "Astronomy", nil, "Stars and galaxies fill the night sky."),
		note("b", "Baking", nil, "Flour sugar butter and eggs make a cake."),
	}
	e := Build(notes, false)

	assert.InDelta(t, e.Similarity("a", "b"), e.Similarity("b", "a"), 1e-9)
	assert.Equal(t, 0.0, e.Similarity("a", "b"))
}

func TestFindSimilar_TopKAndThreshold(t *testing.T) {
	notes := []*model.Note{
		note("root", "Graph Algorithms", []string{"graphs"}, "Traversal of graphs using breadth first search."),
		note("close1", "Graph Traversal", []string{"graphs"}, "Depth first search traversal of graphs."),
		note("close2", "Graph Theory", []string{"graphs"}, "Graphs and their traversal algorithms."),
		note("far", "Gardening Tips", []string{"plants"}, "Watering schedules for tomato plants."),
	}
	e := Build(notes, false)

	matches := e.FindSimilar("root", 1, 0.0)
	if assert.Len(t, matches, 1) {
		assert.NotEqual(t, "far", matches[0].ID)
	}

	allMatches := e.FindSimilar("root", 10, 0.99)
	assert.NotContains(t, idsOf(allMatches), "far")
}

func idsOf(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

func TestStem_Idempotent(t *testing.T) {
	words := []string{"running", "runs", "organization", "happiness"}
	for _, w := range words {
		stemmed := Stem(w)
		assert.Equal(t, stemmed, Stem(stemmed))
	}
}

func TestBuild_StemmingUnifiesVariants(t *testing.T) {
	notes := []*model.Note{
		note("a", "Running", nil, "I enjoy running every morning."),
		note("b", "Runs", nil, "She runs marathons on weekends."),
	}
	stemmed := Build(notes, true)
	unstemmed := Build(notes, false)

	assert.GreaterOrEqual(t, stemmed.Similarity("a", "b"), unstemmed.Similarity("a", "b"))
}
