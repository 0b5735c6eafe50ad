// Package graph defines the read-only GraphProvider capability the
// traversal engine traverses against (spec.md §4.7), plus
// edge inversion for semantic traversal of inbound links.
package graph

import (
	"context"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
)

// Provider is a read-only view of the index: outbound/inbound edges,
// metadata, and (via Invert) edge inversion. The metadata database
// (internal/storage/sqlite), wrapped by SQLiteProvider, implements this
// interface in production; an
// in-memory fixture can stand in for tests (spec.md §4.7).
type Provider interface {
	Outbound(ctx context.Context, id string) ([]model.Edge, error)
	Inbound(ctx context.Context, id string) ([]model.Edge, error)
	Metadata(ctx context.Context, id string) (*NodeMetadata, error)
}

// NodeMetadata is the subset of a note's fields the graph layer needs: its
// type, value (traversal cost weighting), verified flag, and tags.
type NodeMetadata struct {
	ID       string
	Title    string
	Type     model.NoteType
	Value    int
	Verified bool
	Tags     []string
}

// Invert yields a virtual edge with the inverse link type and source tag
// "virtual" (spec.md §4.7 "edge.invert(ontology)"). The returned edge's
// From/To are swapped relative to e, since inversion turns an inbound edge
// into an outbound one for semantic traversal.
func Invert(e model.Edge, o *ontology.Ontology) model.Edge {
	return model.Edge{
		From:     e.To,
		To:       e.From,
		LinkType: o.Inverse(e.LinkType),
		Source:   model.SourceVirtual,
	}
}
