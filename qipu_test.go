package qipu_test

import (
	"context"
	"testing"

	"github.com/mwaldstein/qipu-sub003"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/traversal"
)

func TestInit_OpensUsableCore(t *testing.T) {
	root := t.TempDir()
	c, err := qipu.Init(root, false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer c.Close()

	if c.Store == nil || c.DB == nil {
		t.Fatal("expected non-nil Store and DB")
	}
}

func TestSaveNote_IsImmediatelyQueryable(t *testing.T) {
	root := t.TempDir()
	c, err := qipu.Init(root, false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	a := &model.Note{ID: "qp-a", Title: "A", Body: "Links to [[qp-b]]."}
	b := &model.Note{ID: "qp-b", Title: "B"}

	if _, err := c.SaveNote(ctx, b); err != nil {
		t.Fatalf("SaveNote(b) failed: %v", err)
	}
	if _, err := c.SaveNote(ctx, a); err != nil {
		t.Fatalf("SaveNote(a) failed: %v", err)
	}

	res, err := c.Tree(ctx, "qp-a", traversal.Options{
		Direction: traversal.DirOut, MaxHops: 2, MaxNodes: 10, MaxEdges: 10, IgnoreValue: true,
	})
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if len(res.Notes) != 2 {
		t.Fatalf("expected 2 notes in the tree, got %d", len(res.Notes))
	}
}

func TestFindSimilar_ExcludesSelf(t *testing.T) {
	root := t.TempDir()
	c, err := qipu.Init(root, false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	a := &model.Note{ID: "qp-a", Title: "Gardening", Body: "Watering schedules for tomatoes."}
	b := &model.Note{ID: "qp-b", Title: "Gardening Tips", Body: "Watering schedules for vegetables."}
	for _, n := range []*model.Note{a, b} {
		if _, err := c.SaveNote(ctx, n); err != nil {
			t.Fatalf("SaveNote failed: %v", err)
		}
	}

	matches, err := c.FindSimilar("qp-a", 5, 0.0)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	for _, m := range matches {
		if m.ID == "qp-a" {
			t.Fatal("FindSimilar should not return the query note itself")
		}
	}
}

func TestDoctor_ReportsOrphan(t *testing.T) {
	root := t.TempDir()
	c, err := qipu.Init(root, false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	n := &model.Note{ID: "qp-lonely", Title: "Lonely"}
	if _, err := c.SaveNote(ctx, n); err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}

	issues, err := c.Doctor().Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	var found bool
	for _, iss := range issues {
		if iss.NoteID == "qp-lonely" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an orphaned_notes issue for qp-lonely")
	}
}
