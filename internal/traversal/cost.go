package traversal

import (
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
)

// LinkTypeCost returns the per-link-type base cost (spec.md §4.8
// "get_link_type_cost"). Delegates to the ontology, which carries any
// custom per-type costs from config.toml.
func LinkTypeCost(t model.LinkType, o *ontology.Ontology) float64 {
	return o.LinkTypeCost(t)
}

// EdgeCost is the per-edge traversal cost. When ignoreValue is set every
// edge costs a flat 1.0 ("unit edge costs", spec.md §4.8), matching
// unweighted BFS hop counting; otherwise it delegates to the ontology's
// value-weighted cost, which multiplies the link-type cost by a
// monotonically decreasing function of the neighbor's value (low-value
// notes cost more to reach).
func EdgeCost(t model.LinkType, neighborValue int, o *ontology.Ontology, ignoreValue bool) float64 {
	if ignoreValue {
		return 1.0
	}
	return o.EdgeCost(t, neighborValue)
}
