package noteio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

func TestParse_Basic(t *testing.T) {
	content := "---\nid: qp-a1b2\ntitle: Test Note\ntype: fleeting\ntags:\n  - test\n---\n\nThis is the body.\n"

	note, err := Parse(content, "")
	require.NoError(t, err)
	assert.Equal(t, "qp-a1b2", note.ID)
	assert.Equal(t, "Test Note", note.Title)
	assert.Equal(t, model.TypeFleeting, note.NoteType)
	assert.Equal(t, []string{"test"}, note.Tags)
	assert.Equal(t, "This is the body.\n", note.Body)
}

func TestParse_MissingDelimiter(t *testing.T) {
	_, err := Parse("id: qp-a1b2\ntitle: x\n", "note.md")
	require.Error(t, err)
	assert.True(t, qerr.Is(err, qerr.InvalidFrontmatter))
}

func TestParse_MissingRequiredFields(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{"missing id", "---\ntitle: Test\n---\nbody"},
		{"missing title", "---\nid: qp-1\n---\nbody"},
		{"empty id", "---\nid: \"\"\ntitle: Test\n---\nbody"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.content, "x.md")
			require.Error(t, err)
			assert.True(t, qerr.Is(err, qerr.InvalidFrontmatter))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	v := 75
	verified := true
	n := &model.Note{
		ID:       "qp-abcd",
		Title:    "Round Trip Note",
		NoteType: model.TypeLiterature,
		Tags:     []string{"alpha", "beta"},
		Body:     "## Summary\nA summary.\n\nBody text.\n",
		Value:    &v,
		Verified: &verified,
		Links: []model.TypedLink{
			{LinkType: model.LinkSupports, TargetID: "qp-xyz"},
		},
		Compacts: []string{"qp-old1", "qp-old2"},
		Custom:   map[string]any{"project": "alpha"},
	}

	serialized, err := Serialize(n)
	require.NoError(t, err)

	reparsed, err := Parse(serialized, "")
	require.NoError(t, err)

	assert.Equal(t, n.ID, reparsed.ID)
	assert.Equal(t, n.Title, reparsed.Title)
	assert.Equal(t, n.NoteType, reparsed.NoteType)
	assert.Equal(t, n.Tags, reparsed.Tags)
	assert.Equal(t, n.Body, reparsed.Body)
	assert.Equal(t, *n.Value, *reparsed.Value)
	assert.Equal(t, *n.Verified, *reparsed.Verified)
	assert.Equal(t, n.Links, reparsed.Links)
	assert.Equal(t, n.Compacts, reparsed.Compacts)
	assert.Equal(t, n.Custom["project"], reparsed.Custom["project"])

	// Reserializing the reparsed note yields byte-identical frontmatter+body.
	serializedAgain, err := Serialize(reparsed)
	require.NoError(t, err)
	assert.Equal(t, serialized, serializedAgain)
}

func TestSummary_FallbackOrder(t *testing.T) {
	t.Run("explicit frontmatter field wins", func(t *testing.T) {
		n := &model.Note{Summary: "Explicit summary.", Body: "## Summary\nSection summary.\n"}
		assert.Equal(t, "Explicit summary.", Summary(n))
	})

	t.Run("falls back to Summary section", func(t *testing.T) {
		n := &model.Note{Body: "## Summary\nSection summary.\n\n## Notes\nMore.\n"}
		assert.Equal(t, "Section summary.", Summary(n))
	})

	t.Run("falls back to first paragraph", func(t *testing.T) {
		n := &model.Note{Body: "# Heading\n\nFirst line.\nSecond line.\n\nSecond paragraph.\n"}
		assert.Equal(t, "First line. Second line.", Summary(n))
	})

	t.Run("empty body yields empty summary", func(t *testing.T) {
		n := &model.Note{Body: ""}
		assert.Equal(t, "", Summary(n))
	})
}
