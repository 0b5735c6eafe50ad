package index

import (
	"context"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
	"github.com/mwaldstein/qipu-sub003/internal/storage/sqlite"
	"github.com/mwaldstein/qipu-sub003/internal/store"
)

// resolveConcurrency bounds the worker pool resolveWrites spins up to stat
// note files and resolve their links. Kept modest since the limiting
// resource is usually a spinning disk, not CPU.
const resolveConcurrency = 8

// Strategy selects how much of the store gets indexed (spec.md §4.5).
type Strategy string

const (
	StrategyAdaptive Strategy = "adaptive"
	StrategyQuick    Strategy = "quick"
	StrategyBasic    Strategy = "basic"
	StrategyFull     Strategy = "full"
)

// Builder maintains a metadata database for a store.
type Builder struct {
	Store *store.Store
	DB    *sqlite.DB
}

// New constructs a Builder over an already-open store and database.
func New(s *store.Store, db *sqlite.DB) *Builder {
	return &Builder{Store: s, DB: db}
}

// CountNoteFiles delegates to the store (spec.md §4.5 "count_note_files").
func (b *Builder) CountNoteFiles() (int, error) {
	return b.Store.CountNoteFiles()
}

// AdaptiveIndex builds the index using StrategyAdaptive's threshold rule,
// but is a no-op if the database already contains notes (spec.md §4.5
// "adaptive_index is a no-op if the DB already contains notes").
func (b *Builder) AdaptiveIndex(ctx context.Context, threshold, quickK int, progress sqlite.ProgressFunc) error {
	ids, err := b.DB.AllIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return nil
	}

	n, err := b.CountNoteFiles()
	if err != nil {
		return err
	}

	strategy := StrategyBasic
	if n >= threshold {
		strategy = StrategyQuick
	}
	return b.Build(ctx, strategy, quickK, progress)
}

// Build runs a full rebuild under the given strategy.
func (b *Builder) Build(ctx context.Context, strategy Strategy, quickK int, progress sqlite.ProgressFunc) error {
	notes, err := b.Store.ListNotes()
	if err != nil {
		return err
	}

	selected, level, err := selectNotes(notes, strategy, quickK)
	if err != nil {
		return err
	}

	writes, err := resolveWrites(ctx, selected, level)
	if err != nil {
		return err
	}

	return b.DB.FullRebuild(ctx, writes, progress)
}

// Reindex runs an incremental repair: only notes whose file mtime exceeds
// the stored mtime are rewritten; rows for notes no longer on disk are
// dropped (spec.md §4.5 "Rebuild vs incremental").
func (b *Builder) Reindex(ctx context.Context, progress sqlite.ProgressFunc) error {
	notes, err := b.Store.ListNotes()
	if err != nil {
		return err
	}

	writes, err := resolveWrites(ctx, notes, sqlite.LevelFull)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(notes))
	for _, n := range notes {
		keep[n.Path] = true
	}

	return b.DB.IncrementalRepair(ctx, writes, keep, progress)
}

// UpsertSingle indexes one note in isolation — the path Core.SaveNote
// (qipu.go) uses after writing a note to disk (spec.md §4.3 "update mtime-derived DB
// state afterward").
func (b *Builder) UpsertSingle(ctx context.Context, n *model.Note) error {
	ids, err := b.DB.AllIDs(ctx)
	if err != nil {
		return err
	}
	w, err := resolveOne(n, sqlite.LevelFull, func(id string) bool { return ids[id] || id == n.ID })
	if err != nil {
		return err
	}
	return b.DB.UpsertNote(ctx, w)
}

// Upgrade moves the given ids from basic (level 1) to full (level 2)
// indexing, re-reading their bodies from disk and updating FTS and the
// level flag atomically (spec.md §4.4 "upgrade from basic→full").
func (b *Builder) Upgrade(ctx context.Context, ids []string) error {
	for _, id := range ids {
		path, err := b.DB.GetPath(ctx, id)
		if err != nil {
			return err
		}
		n, err := b.Store.GetNote(id, path)
		if err != nil {
			return err
		}
		if err := b.UpsertSingle(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func selectNotes(notes []*model.Note, strategy Strategy, quickK int) ([]*model.Note, sqlite.IndexLevel, error) {
	switch strategy {
	case StrategyFull:
		return notes, sqlite.LevelFull, nil
	case StrategyBasic:
		return notes, sqlite.LevelBasic, nil
	case StrategyQuick:
		return quickSelect(notes, quickK), sqlite.LevelFull, nil
	default:
		return nil, 0, qerr.New(qerr.Other, "unknown index strategy %q", strategy)
	}
}

// quickSelect keeps every MOC plus the quickK most-recently-modified
// non-MOC notes, sorted by mtime descending with a deterministic id
// tie-break (spec.md §4.5).
func quickSelect(notes []*model.Note, quickK int) []*model.Note {
	var mocs, others []*model.Note
	for _, n := range notes {
		if n.NoteType.IsMOC() {
			mocs = append(mocs, n)
		} else {
			others = append(others, n)
		}
	}

	sort.Slice(others, func(i, j int) bool {
		mi, mj := fileMtime(others[i].Path), fileMtime(others[j].Path)
		if mi != mj {
			return mi > mj
		}
		return others[i].ID < others[j].ID
	})

	if quickK < len(others) {
		others = others[:quickK]
	}

	return append(mocs, others...)
}

func fileMtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

// resolveWrites builds NoteWrite values for a batch, resolving every
// candidate link (typed and inline) against the id set formed by the
// batch itself. Per-note resolution (a stat call plus link resolution) is
// independent of every other note, so a bounded worker pool runs them
// concurrently; the first failure cancels the group, so workers that have
// not started yet skip their note, while a stat already in flight runs to
// completion (spec.md §4.5 "index builder worker pool").
func resolveWrites(ctx context.Context, notes []*model.Note, level sqlite.IndexLevel) ([]sqlite.NoteWrite, error) {
	idSet := make(map[string]bool, len(notes))
	for _, n := range notes {
		idSet[n.ID] = true
	}
	exists := func(id string) bool { return idSet[id] }

	writes := make([]sqlite.NoteWrite, len(notes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, n := range notes {
		i, n := i, n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, err := resolveOne(n, level, exists)
			if err != nil {
				return err
			}
			writes[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return writes, nil
}

func resolveOne(n *model.Note, level sqlite.IndexLevel, exists func(id string) bool) (sqlite.NoteWrite, error) {
	info, err := os.Stat(n.Path)
	if err != nil {
		return sqlite.NoteWrite{}, qerr.Wrap(qerr.Io, err, "stat %s", n.Path)
	}

	w := sqlite.NoteWrite{Note: n, Mtime: info.ModTime().UnixNano(), Level: level}

	for _, link := range candidateLinks(n) {
		if link.TargetID == n.ID {
			continue
		}
		if exists(link.TargetID) {
			w.Edges = append(w.Edges, sqlite.ResolvedEdge{TargetID: link.TargetID, LinkType: link.LinkType, Source: link.Source})
		} else {
			w.Unresolved = append(w.Unresolved, link.TargetID)
		}
	}

	return w, nil
}
