package pack

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/store"
)

func samplePack() *Pack {
	ts := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	return &Pack{
		Header: Header{Version: Version, StorePath: "/tmp/store"},
		Notes: []Note{
			{ID: "a", Title: "Project A", Tags: []string{"project"}, Body: "See [[b]] and [[c]].", Created: ts, Updated: ts,
				Links: []TypedLink{{LinkType: "related", TargetID: "b"}, {LinkType: "related", TargetID: "c"}}},
			{ID: "b", Title: "Note B", Body: "Body of b.", Created: ts, Updated: ts},
			{ID: "c", Title: "Note C", Body: "Body of c.\nSecond line.", Created: ts, Updated: ts},
		},
		Links: []Link{
			{From: "a", To: "b", LinkType: "related", Source: "typed"},
			{From: "a", To: "c", LinkType: "related", Source: "typed"},
		},
		Attachments: []Attachment{
			{NoteID: "b", Filename: "diagram.png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
		},
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	p := samplePack()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, p))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestRecords_RoundTrip(t *testing.T) {
	p := samplePack()
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, p))

	got, err := ReadRecords(&buf)
	require.NoError(t, err)

	require.Len(t, got.Notes, 3)
	assert.Equal(t, "See [[b]] and [[c]].", got.Notes[0].Body)
	assert.Equal(t, "Body of c.\nSecond line.", got.Notes[2].Body)
	assert.Equal(t, p.Attachments[0].Data, got.Attachments[0].Data)
	require.Len(t, got.Notes[0].Links, 2)
}

func TestSniffAndRead_AutoDetects(t *testing.T) {
	p := samplePack()

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, p))
	assert.Equal(t, "json", Sniff(jsonBuf.Bytes()))

	var recBuf bytes.Buffer
	require.NoError(t, WriteRecords(&recBuf, p))
	assert.Equal(t, "records", Sniff(recBuf.Bytes()))

	gotFromJSON, err := Read(bytes.NewReader(jsonBuf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, gotFromJSON.Notes, 3)

	gotFromRecords, err := Read(bytes.NewReader(recBuf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, gotFromRecords.Notes, 3)
}

// Example F: dump {a->b, a->c} where a is tagged project; loading into a
// fresh store recreates the notes with the typed link preserved.
func TestFromNotes_Load_ExampleF(t *testing.T) {
	root := t.TempDir()
	srcStore, err := store.Init(root, false)
	require.NoError(t, err)

	a := &model.Note{ID: "a", Title: "Project A", Tags: []string{"project"},
		Links: []model.TypedLink{{LinkType: model.LinkRelated, TargetID: "b"}, {LinkType: model.LinkRelated, TargetID: "c"}}}
	b := &model.Note{ID: "b", Title: "Note B"}
	c := &model.Note{ID: "c", Title: "Note C"}
	for _, n := range []*model.Note{a, b, c} {
		_, err := srcStore.SaveNote(n)
		require.NoError(t, err)
	}

	edges := []model.Edge{
		{From: "a", To: "b", LinkType: model.LinkRelated, Source: model.SourceTyped},
		{From: "a", To: "c", LinkType: model.LinkRelated, Source: model.SourceTyped},
	}

	p, err := FromNotes(srcStore, []*model.Note{a, b, c}, edges, nil)
	require.NoError(t, err)

	destRoot := t.TempDir()
	destStore, err := store.Init(destRoot, false)
	require.NoError(t, err)

	require.NoError(t, Load(destStore, p))

	loaded, err := destStore.ListNotes()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	var loadedA *model.Note
	for _, n := range loaded {
		if n.ID == "a" {
			loadedA = n
		}
	}
	require.NotNil(t, loadedA)
	require.Len(t, loadedA.Links, 2)
	assert.Equal(t, model.LinkRelated, loadedA.Links[0].LinkType)
}
