// Package qipu is the top-level façade composing every core subsystem —
// filesystem store, metadata database, index builder, compaction context,
// graph provider, traversal engine, similarity engine, validator, and pack
// import/export — into the single entry point an external collaborator
// (CLI, TUI, LLM-judge harness) is expected to hold (spec.md §6). Per
// spec.md's design notes ("Global/ambient state: None in the core. All
// state lives inside a Store value"), Core owns no package-level state: a
// database handle, root path, loaded configuration, and on-demand indexes.
package qipu

import (
	"context"

	"github.com/mwaldstein/qipu-sub003/internal/compact"
	"github.com/mwaldstein/qipu-sub003/internal/config"
	"github.com/mwaldstein/qipu-sub003/internal/doctor"
	"github.com/mwaldstein/qipu-sub003/internal/graph"
	"github.com/mwaldstein/qipu-sub003/internal/index"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
	"github.com/mwaldstein/qipu-sub003/internal/pack"
	"github.com/mwaldstein/qipu-sub003/internal/similarity"
	"github.com/mwaldstein/qipu-sub003/internal/storage/sqlite"
	"github.com/mwaldstein/qipu-sub003/internal/store"
	"github.com/mwaldstein/qipu-sub003/internal/traversal"
)

// Core is a single open store plus its metadata database connection. Callers
// own one Core per store directory and must not share its *sqlite.DB across
// goroutines (spec.md §5 "the database connection is exclusive to the
// owning component; callers must not alias it").
type Core struct {
	Store    *store.Store
	DB       *sqlite.DB
	Ontology *ontology.Ontology
}

// Init creates a new store at root and opens it.
func Init(root string, preferHidden bool) (*Core, error) {
	s, err := store.Init(root, preferHidden)
	if err != nil {
		return nil, err
	}
	return open(s)
}

// Open opens the nearest existing store found by walking up from startDir.
func Open(startDir string) (*Core, error) {
	s, err := store.OpenNearest(startDir)
	if err != nil {
		return nil, err
	}
	return open(s)
}

func open(s *store.Store) (*Core, error) {
	db, err := sqlite.Open(s.DBPath())
	if err != nil {
		return nil, err
	}
	return &Core{Store: s, DB: db, Ontology: s.Config.ToOntology()}, nil
}

// Close releases the database connection. It does not touch the
// filesystem store, which is stateless.
func (c *Core) Close() error { return c.DB.Close() }

// Indexer returns an index.Builder bound to this Core's store and database
// (spec.md §4.5).
func (c *Core) Indexer() *index.Builder { return index.New(c.Store, c.DB) }

// SaveNote writes note to the filesystem and incrementally updates the
// index in the same call, so a caller never sees a stale database after a
// single-note write.
func (c *Core) SaveNote(ctx context.Context, n *model.Note) (wrote bool, err error) {
	wrote, err = c.Store.SaveNote(n)
	if err != nil {
		return wrote, err
	}
	if err := c.Indexer().UpsertSingle(ctx, n); err != nil {
		return wrote, err
	}
	return wrote, nil
}

// DeleteNote removes note from the filesystem and its index row.
func (c *Core) DeleteNote(ctx context.Context, n *model.Note) error {
	if err := c.Store.DeleteNote(n); err != nil {
		return err
	}
	return c.DB.DeleteNote(ctx, n.ID)
}

// compactionContext builds a fresh compact.Context and equivalence map from
// the current note set. Both the traversal engine and the doctor rebuild
// this on demand rather than caching it, matching spec.md's "on-demand
// indexes" ambient-state model: a Core holds no stale compaction state
// between calls.
func (c *Core) compactionContext() (*compact.Context, map[string][]string, error) {
	notes, err := c.Store.ListNotes()
	if err != nil {
		return nil, nil, err
	}
	cctx, err := compact.Build(notes)
	if err != nil {
		return nil, nil, err
	}
	eq, err := cctx.BuildEquivalenceMap(notes)
	if err != nil {
		return nil, nil, err
	}
	return cctx, eq, nil
}

// TraversalEngine builds a traversal.Engine wired to this Core's graph
// provider and current compaction context (spec.md §4.7, §4.8).
func (c *Core) TraversalEngine() (*traversal.Engine, error) {
	cctx, eq, err := c.compactionContext()
	if err != nil {
		return nil, err
	}
	provider := &graph.SQLiteProvider{DB: c.DB}
	return traversal.NewEngine(provider, c.Ontology, cctx, eq), nil
}

// Tree runs a bounded traversal from root (spec.md §4.8).
func (c *Core) Tree(ctx context.Context, root string, opts traversal.Options) (*traversal.TreeResult, error) {
	eng, err := c.TraversalEngine()
	if err != nil {
		return nil, err
	}
	return eng.Tree(ctx, root, opts)
}

// ShortestPath finds the lowest-cost path between from and to (spec.md
// §4.8).
func (c *Core) ShortestPath(ctx context.Context, from, to string, opts traversal.Options) (*traversal.PathResult, error) {
	eng, err := c.TraversalEngine()
	if err != nil {
		return nil, err
	}
	return eng.ShortestPath(ctx, from, to, opts)
}

// SimilarityEngine builds a similarity.Engine from a snapshot of every note
// in the store, honoring the store's configured stemming preference
// (spec.md §4.9, §9 "Open question: similarity threshold defaults").
func (c *Core) SimilarityEngine() (*similarity.Engine, error) {
	notes, err := c.Store.ListNotes()
	if err != nil {
		return nil, err
	}
	return similarity.Build(notes, c.Store.Config.Similarity.Stemming), nil
}

// FindSimilar returns the top-k notes most similar to id. A negative
// threshold falls back to the store's configured related-note threshold
// (spec.md §9 Open Question: similarity threshold defaults); a threshold of
// exactly 0 is honored literally, returning every note in the corpus.
func (c *Core) FindSimilar(id string, k int, threshold float64) ([]similarity.Match, error) {
	eng, err := c.SimilarityEngine()
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		threshold = c.Store.Config.Similarity.RelatedThreshold
	}
	return eng.FindSimilar(id, k, threshold), nil
}

// Doctor builds a doctor.Doctor bound to this Core (spec.md §4.10).
func (c *Core) Doctor() *doctor.Doctor { return doctor.New(c.Store, c.DB, c.Ontology) }

// Dump builds a pack.Pack snapshot of notes and the resolved edges among
// them (spec.md §6, §9 Example F).
func (c *Core) Dump(notes []*model.Note, edges []model.Edge, attachmentFiles map[string][]string) (*pack.Pack, error) {
	return pack.FromNotes(c.Store, notes, edges, attachmentFiles)
}

// LoadPack writes every note and attachment in p into this Core's store and
// reindexes, so the loaded notes are immediately queryable.
func (c *Core) LoadPack(ctx context.Context, p *pack.Pack, progress sqlite.ProgressFunc) error {
	if err := pack.Load(c.Store, p); err != nil {
		return err
	}
	return c.Indexer().Reindex(ctx, progress)
}

// Config returns the store's loaded configuration (spec.md §6).
func (c *Core) Config() *config.Config { return c.Store.Config }
