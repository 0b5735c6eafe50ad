// Package compact implements the compaction context (spec.md §4.6):
// canonicalization of notes that have been folded into a "digest" note via
// their `compacts` frontmatter list, with invariant validation (no
// self-compaction, single owner, acyclicity) and equivalence-map
// construction for graph traversal. Grounded on the original Rust
// implementation's crate::compaction::CompactionContext API, observed
// through its call sites in commands/compact/show.rs and
// commands/compact/suggest.rs (the module itself was not retained in
// original_source, only its usage).
package compact

import (
	"fmt"
	"sort"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// Context holds the compactor_of (forward) and compacts (reverse)
// relations derived from every note's `compacts` list, plus their
// transitive closure.
type Context struct {
	compactorOf map[string]string   // source id -> the digest that compacts it
	compacts    map[string][]string // digest id -> direct source ids
	canonCache  map[string]string
}

// maxChainLength bounds canon()'s fixed-point chase. Acyclicity (validated
// at Build time) guarantees termination well under this; it exists purely
// as a defensive ceiling against a future validation bug, not a behavior
// any well-formed store can hit.
const maxChainLength = 10000

// Build validates the compaction invariants across notes and constructs a
// Context. Invariants (spec.md §4.6): every `compacts` target exists, no
// note compacts itself, each source has at most one compactor
// (single-owner), and the compactor_of relation is acyclic.
func Build(notes []*model.Note) (*Context, error) {
	byID := make(map[string]*model.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}

	ctx := &Context{
		compactorOf: make(map[string]string),
		compacts:    make(map[string][]string),
		canonCache:  make(map[string]string),
	}

	for _, n := range notes {
		for _, sourceID := range n.Compacts {
			if sourceID == n.ID {
				return nil, qerr.New(qerr.Other, "note %s cannot compact itself", n.ID)
			}
			if _, exists := byID[sourceID]; !exists {
				return nil, qerr.New(qerr.Other, "note %s compacts nonexistent note %s", n.ID, sourceID)
			}
			if owner, already := ctx.compactorOf[sourceID]; already && owner != n.ID {
				return nil, qerr.New(qerr.Other, "note %s is compacted by both %s and %s (single-owner violation)", sourceID, owner, n.ID)
			}
			ctx.compactorOf[sourceID] = n.ID
			ctx.compacts[n.ID] = append(ctx.compacts[n.ID], sourceID)
		}
	}

	if err := ctx.checkAcyclic(); err != nil {
		return nil, err
	}

	return ctx, nil
}

func (c *Context) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)

	var visit func(id string, chain []string) error
	visit = func(id string, chain []string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return qerr.New(qerr.Other, "compaction cycle detected: %v", append(chain, id))
		}
		color[id] = gray
		if next, ok := c.compactorOf[id]; ok {
			if err := visit(next, append(chain, id)); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	ids := make([]string, 0, len(c.compactorOf))
	for id := range c.compactorOf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// Canon returns the canonical (fully-compacted) id for id: the fixed point
// of repeatedly following compactor_of.
func (c *Context) Canon(id string) (string, error) {
	if cached, ok := c.canonCache[id]; ok {
		return cached, nil
	}

	current := id
	for i := 0; i < maxChainLength; i++ {
		next, ok := c.compactorOf[current]
		if !ok {
			c.canonCache[id] = current
			return current, nil
		}
		current = next
	}
	return "", qerr.New(qerr.Other, "canon(%s) did not converge within %d steps", id, maxChainLength)
}

// GetCompactedIds returns the breadth-first expansion of the reverse
// (compacts) relation from digestID, bounded by depth and an optional
// node cap (0 = unbounded). The bool reports whether the cap truncated
// the result.
func (c *Context) GetCompactedIds(digestID string, depth, maxNodes int) ([]string, bool) {
	if depth <= 0 {
		return nil, false
	}

	var ids []string
	seen := map[string]bool{digestID: true}
	frontier := []string{digestID}
	truncated := false

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		sources := make([]string, 0)
		for _, id := range frontier {
			sources = append(sources, c.compacts[id]...)
		}
		sort.Strings(sources)
		for _, src := range sources {
			if seen[src] {
				continue
			}
			if maxNodes > 0 && len(ids) >= maxNodes {
				truncated = true
				break
			}
			seen[src] = true
			ids = append(ids, src)
			next = append(next, src)
		}
		frontier = next
	}

	return ids, truncated
}

// GetCompactsCount returns the direct (depth-1) compacts count for id.
func (c *Context) GetCompactsCount(id string) int {
	return len(c.compacts[id])
}

// GetCompactionPct returns `1 - size(digest)/sum(size(sources))` as a
// percentage, matching the original CLI's `compact show` metric.
func GetCompactionPct(digestSize int, sourceSizes []int) float64 {
	total := 0
	for _, s := range sourceSizes {
		total += s
	}
	if total == 0 {
		return 0
	}
	return 100.0 * (1.0 - float64(digestSize)/float64(total))
}

// BuildEquivalenceMap returns, for each canonical id reachable from notes,
// the list of every source id that canonicalizes to it — used by
// traversal to expand "one-of-many" edge lookups (spec.md §4.6).
func (c *Context) BuildEquivalenceMap(notes []*model.Note) (map[string][]string, error) {
	eq := make(map[string][]string)
	for _, n := range notes {
		canon, err := c.Canon(n.ID)
		if err != nil {
			return nil, err
		}
		eq[canon] = append(eq[canon], n.ID)
	}
	for k := range eq {
		sort.Strings(eq[k])
	}
	return eq, nil
}

func (c *Context) String() string {
	return fmt.Sprintf("compact.Context{compactors=%d, digests=%d}", len(c.compactorOf), len(c.compacts))
}
