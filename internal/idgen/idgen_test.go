package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Machine Learning Basics", "machine_learning_basics"},
		{"The Quick Fox", "quick_fox"},
		{"", "untitled"},
		{"123", "n123"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title), tc.title)
	}
}

func TestGenerate_Semantic_Collisions(t *testing.T) {
	existing := map[string]bool{"qp-machine_learning": true, "qp-machine_learning_2": true}
	id := Generate(SchemeSemantic, "qp", "Machine Learning", existing)
	assert.Equal(t, "qp-machine_learning_3", id)
}

func TestGenerate_Hash_Unique(t *testing.T) {
	existing := map[string]bool{}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := Generate(SchemeHash, "qp", "Same Title", existing)
		assert.False(t, seen[id], "generated duplicate id %s", id)
		seen[id] = true
		existing[id] = true
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "qp-a1b2-machine_learning.md", Filename("qp-a1b2", "Machine Learning", ""))
}
