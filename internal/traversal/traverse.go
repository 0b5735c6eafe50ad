package traversal

import (
	"context"
	"sort"

	"github.com/mwaldstein/qipu-sub003/internal/compact"
	"github.com/mwaldstein/qipu-sub003/internal/graph"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
)

// candidateNeighbor is one filter-passing raw neighbor discovered while
// expanding a node, before canonicalization.
type candidateNeighbor struct {
	sourceID string // the (possibly equivalence-expanded) id being expanded from
	rawID    string // the neighbor as the provider returned it, pre-canonicalization
	edge     model.Edge
}

// Engine runs bounded tree traversals and shortest-path searches against a
// graph.Provider, optionally canonicalizing through a compaction context
// (spec.md §4.8).
type Engine struct {
	Provider graph.Provider
	Ontology *ontology.Ontology
	Compact  *compact.Context    // nil when no compaction is in effect
	EquivMap map[string][]string // canon id -> source ids; nil when Compact is nil
}

// NewEngine builds an Engine. compactCtx and equivMap may both be nil for a
// store with no compaction in effect.
func NewEngine(p graph.Provider, o *ontology.Ontology, compactCtx *compact.Context, equivMap map[string][]string) *Engine {
	return &Engine{Provider: p, Ontology: o, Compact: compactCtx, EquivMap: equivMap}
}

func (e *Engine) canon(id string) (string, error) {
	if e.Compact == nil {
		return id, nil
	}
	return e.Compact.Canon(id)
}

func (e *Engine) sourceIDs(canonID string) []string {
	if e.EquivMap == nil {
		return []string{canonID}
	}
	if ids, ok := e.EquivMap[canonID]; ok && len(ids) > 0 {
		return ids
	}
	return []string{canonID}
}

func (e *Engine) valueOf(ctx context.Context, id string) int {
	meta, err := e.Provider.Metadata(ctx, id)
	if err != nil || meta == nil {
		return model.DefaultValue
	}
	return meta.Value
}

// Tree runs a bounded traversal from root (spec.md §4.8). root is
// canonicalized before the search begins; every emitted note, link, and
// spanning-tree entry is canonical.
func (e *Engine) Tree(ctx context.Context, root string, o Options) (*TreeResult, error) {
	canonRoot, err := e.canon(root)
	if err != nil {
		return nil, err
	}

	rootValue := e.valueOf(ctx, canonRoot)
	if rootValue < o.MinValue {
		return &TreeResult{Truncated: true, Reason: ReasonMinValueExcluded}, nil
	}

	var via string
	if canonRoot != root {
		via = root
	}

	visited := map[string]float64{canonRoot: 0}
	notes := []NoteEntry{{ID: canonRoot, Hop: 0, Via: via}}
	var links []LinkEntry
	var spanning []SpanEntry
	truncated := false
	reason := ReasonNone
	setReason := func(r Reason) {
		if reason == ReasonNone {
			truncated = true
			reason = r
		}
	}

	var fr frontier
	if o.IgnoreValue {
		fr = newBFSFrontier()
	} else {
		fr = newHeapFrontier()
	}
	fr.push(frontierItem{id: canonRoot, cost: 0})

	edgesEmitted := 0
	stop := false

	for fr.len() > 0 && !stop {
		item, ok := fr.pop()
		if !ok {
			break
		}
		u, c := item.id, item.cost

		neighbors := e.collectNeighbors(ctx, u, o)

		if c >= o.MaxHops {
			for _, cand := range neighbors {
				canonFrom, err := e.canon(cand.sourceID)
				if err != nil {
					return nil, err
				}
				canonTo, err := e.canon(cand.rawID)
				if err != nil {
					return nil, err
				}
				if canonFrom == canonTo {
					continue
				}
				setReason(ReasonMaxHops)
				break
			}
			continue
		}

		if o.MaxFanout > 0 && len(neighbors) > o.MaxFanout {
			setReason(ReasonMaxFanout)
			neighbors = neighbors[:o.MaxFanout]
		}

		for _, cand := range neighbors {
			canonFrom, err := e.canon(cand.sourceID)
			if err != nil {
				return nil, err
			}
			canonTo, err := e.canon(cand.rawID)
			if err != nil {
				return nil, err
			}
			if canonFrom == canonTo {
				continue
			}

			neighborVia := ""
			if canonTo != cand.rawID {
				neighborVia = cand.rawID
			}
			// A link found through a compacted source id carries that id as
			// its via when the target itself was not canonicalized.
			linkVia := neighborVia
			if linkVia == "" && canonFrom != cand.sourceID {
				linkVia = cand.sourceID
			}

			_, seen := visited[canonTo]
			if !seen {
				if e.valueOf(ctx, canonTo) < o.MinValue {
					continue
				}
			}

			if o.MaxEdges > 0 && edgesEmitted >= o.MaxEdges {
				setReason(ReasonMaxEdges)
				stop = true
				break
			}
			edgesEmitted++
			links = append(links, LinkEntry{From: canonFrom, To: canonTo, LinkType: cand.edge.LinkType, Source: cand.edge.Source, Via: linkVia})

			if !seen {
				if o.MaxNodes > 0 && len(visited) >= o.MaxNodes {
					setReason(ReasonMaxNodes)
					stop = true
					break
				}
				newCost := c + EdgeCost(cand.edge.LinkType, e.valueOf(ctx, canonTo), e.Ontology, o.IgnoreValue)
				visited[canonTo] = newCost
				notes = append(notes, NoteEntry{ID: canonTo, Hop: newCost, Via: neighborVia})
				spanning = append(spanning, SpanEntry{From: canonFrom, To: canonTo, Hop: newCost, LinkType: cand.edge.LinkType})
				fr.push(frontierItem{id: canonTo, cost: newCost})
			}
		}
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	sort.Slice(links, func(i, j int) bool {
		if links[i].From != links[j].From {
			return links[i].From < links[j].From
		}
		if links[i].LinkType != links[j].LinkType {
			return links[i].LinkType < links[j].LinkType
		}
		return links[i].To < links[j].To
	})
	sort.Slice(spanning, func(i, j int) bool {
		if spanning[i].Hop != spanning[j].Hop {
			return spanning[i].Hop < spanning[j].Hop
		}
		if spanning[i].LinkType != spanning[j].LinkType {
			return spanning[i].LinkType < spanning[j].LinkType
		}
		return spanning[i].To < spanning[j].To
	})

	return &TreeResult{Notes: notes, Links: links, SpanningTree: spanning, Truncated: truncated, Reason: reason}, nil
}

// collectNeighbors gathers the filter-passing raw neighbors of u (expanded
// across its equivalence-mapped source ids), sorted by (link_type, id), per
// spec.md §4.8 steps 2-4.
func (e *Engine) collectNeighbors(ctx context.Context, u string, o Options) []candidateNeighbor {
	var out []candidateNeighbor
	for _, sourceID := range e.sourceIDs(u) {
		if o.Direction == DirOut || o.Direction == DirBoth {
			edges, err := e.Provider.Outbound(ctx, sourceID)
			if err == nil {
				for _, edge := range edges {
					if !o.typeAllowed(edge.LinkType) || !o.sourceAllowed(edge.Source) {
						continue
					}
					out = append(out, candidateNeighbor{sourceID: sourceID, rawID: edge.To, edge: edge})
				}
			}
		}
		if o.Direction == DirIn || o.Direction == DirBoth {
			edges, err := e.Provider.Inbound(ctx, sourceID)
			if err == nil {
				for _, edge := range edges {
					use := edge
					if o.SemanticInversion {
						use = graph.Invert(edge, e.Ontology)
					}
					if !o.typeAllowed(use.LinkType) || !o.sourceAllowed(use.Source) {
						continue
					}
					rawID := edge.From
					if o.SemanticInversion {
						rawID = use.To
					}
					out = append(out, candidateNeighbor{sourceID: sourceID, rawID: rawID, edge: use})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].edge.LinkType != out[j].edge.LinkType {
			return out[i].edge.LinkType < out[j].edge.LinkType
		}
		return out[i].rawID < out[j].rawID
	})
	return out
}
