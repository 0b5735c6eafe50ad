package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

func TestInit_CreatesLayout(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)
	assert.Equal(t, HiddenDirName, s.DirName)

	for _, dir := range []string{s.NotesDirPath(), s.MOCsDirPath(), s.AttachmentsDirPath(), s.TemplatesDirPath(), s.CacheDirPath()} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.FileExists(t, filepath.Join(s.StoreDir(), "config.toml"))
	gi, err := os.ReadFile(filepath.Join(s.StoreDir(), ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gi), "qipu.db")
	assert.Contains(t, string(gi), ".cache/")
}

func TestInit_Idempotent(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root, true)
	require.NoError(t, err)

	s2, err := Init(root, false) // preferHidden ignored when a store already exists
	require.NoError(t, err)
	assert.Equal(t, HiddenDirName, s2.DirName)
}

func TestOpenNearest_FindsAncestorStore(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root, true)
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	s, err := OpenNearest(nested)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root)
}

func TestSaveNote_ContentEqualityGate(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	n := &model.Note{ID: "qp-abc123", Title: "Test Note", NoteType: model.TypeFleeting, Body: "hello"}
	wrote, err := s.SaveNote(n)
	require.NoError(t, err)
	assert.True(t, wrote)

	info1, err := os.Stat(n.Path)
	require.NoError(t, err)

	wrote, err = s.SaveNote(n)
	require.NoError(t, err)
	assert.False(t, wrote, "identical content should not rewrite the file")

	info2, err := os.Stat(n.Path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}

func TestSaveNote_MOCGoesToMOCsDir(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	n := &model.Note{ID: "qp-moc1", Title: "Index", NoteType: model.TypeMOC}
	_, err = s.SaveNote(n)
	require.NoError(t, err)
	assert.Contains(t, n.Path, string(filepath.Separator)+MOCsDir+string(filepath.Separator))
}

func TestGetNote_FallsBackToScan(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	n := &model.Note{ID: "qp-find-me", Title: "Findable", NoteType: model.TypeFleeting}
	_, err = s.SaveNote(n)
	require.NoError(t, err)

	found, err := s.GetNote("qp-find-me", "")
	require.NoError(t, err)
	assert.Equal(t, "Findable", found.Title)

	found, err = s.GetNote("qp-find-me", "/nonexistent/stale-hint.md")
	require.NoError(t, err)
	assert.Equal(t, "Findable", found.Title)
}

func TestGetNote_NotFound(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	_, err = s.GetNote("qp-nope", "")
	assert.Error(t, err)
}

func TestDeleteNote(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	n := &model.Note{ID: "qp-del1", Title: "Deletable", NoteType: model.TypeFleeting}
	_, err = s.SaveNote(n)
	require.NoError(t, err)

	require.NoError(t, s.DeleteNote(n))
	_, err = os.Stat(n.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestListNotes(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	for _, title := range []string{"One", "Two", "Three"} {
		n := &model.Note{ID: "qp-" + title, Title: title, NoteType: model.TypeFleeting}
		_, err := s.SaveNote(n)
		require.NoError(t, err)
	}

	notes, err := s.ListNotes()
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestCountNoteFiles(t *testing.T) {
	root := t.TempDir()
	s, err := Init(root, true)
	require.NoError(t, err)

	n := &model.Note{ID: "qp-count1", Title: "Counted", NoteType: model.TypeFleeting}
	_, err = s.SaveNote(n)
	require.NoError(t, err)

	count, err := s.CountNoteFiles()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDiscover_NotFound(t *testing.T) {
	root := t.TempDir()
	_, _, err := Discover(root)
	assert.Error(t, err)
}
