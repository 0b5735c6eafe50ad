// Package ontology holds the link-type inversion tables that let the
// traversal engine synthesize virtual inbound edges (spec.md §3, §4.8) and
// the three ontology modes a store can run in.
package ontology

import "github.com/mwaldstein/qipu-sub003/internal/model"

// Mode controls how a custom ontology combines with the standard one
// (spec.md §6, GLOSSARY "Ontology mode").
type Mode string

const (
	// ModeDefault uses only the standard inverse table.
	ModeDefault Mode = "default"
	// ModeExtended adds custom inverses on top of the standard table.
	ModeExtended Mode = "extended"
	// ModeReplacement uses only the custom inverse table, ignoring the
	// standard one entirely.
	ModeReplacement Mode = "replacement"
)

// standardInverses is the built-in pair table (spec.md §3). Symmetric
// types (related, same-as) map to themselves.
var standardInverses = map[model.LinkType]model.LinkType{
	model.LinkRelated:     model.LinkRelated,
	model.LinkSameAs:      model.LinkSameAs,
	model.LinkDerivedFrom: model.LinkDerivedTo,
	model.LinkDerivedTo:   model.LinkDerivedFrom,
	model.LinkSupports:    model.LinkSupportedBy,
	model.LinkSupportedBy: model.LinkSupports,
	model.LinkContradicts: model.LinkContrBy,
	model.LinkContrBy:     model.LinkContradicts,
	model.LinkPartOf:      model.LinkHasPart,
	model.LinkHasPart:     model.LinkPartOf,
	model.LinkAnswers:     model.LinkAnsweredBy,
	model.LinkAnsweredBy:  model.LinkAnswers,
	model.LinkRefines:     model.LinkRefinedBy,
	model.LinkRefinedBy:   model.LinkRefines,
	model.LinkAliasOf:     model.LinkHasAlias,
	model.LinkHasAlias:    model.LinkAliasOf,
	model.LinkFollows:     model.LinkPrecedes,
	model.LinkPrecedes:    model.LinkFollows,
}

// Ontology is a link-type inverse table plus a mode, as loaded from
// config.toml's `ontology` section.
type Ontology struct {
	Mode Mode
	// Custom overrides/extends the standard table depending on Mode.
	Custom map[model.LinkType]model.LinkType
	// Costs overrides the default per-link-type cost used by the weighted
	// traversal (spec.md §4.8). Link types absent here use DefaultLinkCost.
	Costs map[model.LinkType]float64
}

// DefaultLinkCost is the cost for link types with no explicit override.
const DefaultLinkCost = 1.0

// New builds a default ontology (ModeDefault, no overrides).
func New() *Ontology {
	return &Ontology{Mode: ModeDefault}
}

// Inverse returns the inverse of t under this ontology. Unknown types fall
// back to the `inverse-<t>` / `<t>` pattern (spec.md §3): stripping the
// "inverse-" prefix if present, or prepending it otherwise.
func (o *Ontology) Inverse(t model.LinkType) model.LinkType {
	if o != nil && o.Mode == ModeReplacement {
		if inv, ok := o.Custom[t]; ok {
			return inv
		}
		return fallbackInverse(t)
	}

	if inv, ok := standardInverses[t]; ok {
		return inv
	}
	if o != nil && o.Mode == ModeExtended {
		if inv, ok := o.Custom[t]; ok {
			return inv
		}
	}
	return fallbackInverse(t)
}

func fallbackInverse(t model.LinkType) model.LinkType {
	const prefix = "inverse-"
	s := string(t)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return model.LinkType(s[len(prefix):])
	}
	return model.LinkType(prefix + s)
}

// LinkTypeCost returns get_link_type_cost(t, ontology): a positive float
// cost for the link type alone, ignoring neighbor value (spec.md §4.8).
func (o *Ontology) LinkTypeCost(t model.LinkType) float64 {
	if o != nil {
		if c, ok := o.Costs[t]; ok {
			return c
		}
	}
	return DefaultLinkCost
}

// EdgeCost returns get_edge_cost(t, neighborValue, ontology): the link-type
// cost scaled by a monotonically decreasing function of the neighbor's
// value so that low-value notes cost more to traverse through
// (spec.md §4.8).
func (o *Ontology) EdgeCost(t model.LinkType, neighborValue int) float64 {
	base := o.LinkTypeCost(t)
	if neighborValue < 0 {
		neighborValue = 0
	}
	if neighborValue > 100 {
		neighborValue = 100
	}
	// value=100 -> multiplier 1.0 (cheapest); value=0 -> multiplier 3.0.
	multiplier := 1.0 + 2.0*(float64(100-neighborValue)/100.0)
	return base * multiplier
}
