// Package traversal implements the bounded graph traversal engine
// (spec.md §4.8): BFS/Dijkstra tree expansion and shortest-path search
// over a graph.Provider, with compaction-aware canonicalization,
// deterministic ordering, and hard resource caps. Grounded on the
// original Rust implementation's crate::graph::algos::dijkstra module
// (original_source/crates/qipu-core/src/graph/algos/dijkstra.rs), the
// single most detailed surviving description of the expansion step.
package traversal

import "github.com/mwaldstein/qipu-sub003/internal/model"

// Direction selects which edge endpoints a traversal expands from.
type Direction int

const (
	DirOut Direction = iota
	DirIn
	DirBoth
)

// Reason classifies why a traversal was truncated.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMaxHops          Reason = "max_hops"
	ReasonMaxNodes         Reason = "max_nodes"
	ReasonMaxEdges         Reason = "max_edges"
	ReasonMaxFanout        Reason = "max_fanout"
	ReasonMinValueExcluded Reason = "min_value filter excluded root"
)

// Options is the TreeOptions contract (spec.md §4.8) governing every
// traversal and shortest-path call. Zero-value MaxNodes/MaxEdges/MaxFanout
// mean "unbounded"; MaxHops of 0 means "do not expand past the root".
type Options struct {
	Direction Direction

	MaxHops   float64
	MaxNodes  int
	MaxEdges  int
	MaxFanout int

	TypeInclude []model.LinkType
	TypeExclude []model.LinkType
	TypedOnly   bool
	InlineOnly  bool

	MinValue    int
	IgnoreValue bool

	SemanticInversion bool
}

// Default returns permissive, moderately bounded options: direction out,
// three hops, 1000 node/2000 edge caps, no fanout cap, no value floor,
// weighted (Dijkstra) mode.
func Default() Options {
	return Options{
		Direction: DirOut,
		MaxHops:   3,
		MaxNodes:  1000,
		MaxEdges:  2000,
	}
}

func (o Options) typeAllowed(t model.LinkType) bool {
	if len(o.TypeInclude) > 0 {
		allowed := false
		for _, it := range o.TypeInclude {
			if it == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	for _, ex := range o.TypeExclude {
		if ex == t {
			return false
		}
	}
	return true
}

func (o Options) sourceAllowed(s model.EdgeSource) bool {
	if o.TypedOnly && s != model.SourceTyped {
		return false
	}
	if o.InlineOnly && s != model.SourceInline {
		return false
	}
	return true
}
