package graph

import (
	"context"
	"fmt"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// Fixture is an in-memory Provider, used by this package's and
// internal/traversal's tests as the test double spec.md §4.7 anticipates
// ("so can in-memory test doubles").
type Fixture struct {
	outbound map[string][]model.Edge
	inbound  map[string][]model.Edge
	meta     map[string]*NodeMetadata
}

// NewFixture returns an empty Fixture.
func NewFixture() *Fixture {
	return &Fixture{outbound: map[string][]model.Edge{}, inbound: map[string][]model.Edge{}, meta: map[string]*NodeMetadata{}}
}

// AddEdge records e in both the outbound index (keyed by From) and the
// inbound index (keyed by To).
func (f *Fixture) AddEdge(e model.Edge) {
	f.outbound[e.From] = append(f.outbound[e.From], e)
	f.inbound[e.To] = append(f.inbound[e.To], e)
}

// AddNode registers a node's metadata with the given value. Metadata for a
// node that was never registered is an error, not a default.
func (f *Fixture) AddNode(id string, value int) {
	f.meta[id] = &NodeMetadata{ID: id, Title: id, Type: model.TypeFleeting, Value: value}
}

// AddNodeType registers a node's metadata with an explicit note type (used
// to exercise MOC-specific traversal behavior).
func (f *Fixture) AddNodeType(id string, value int, t model.NoteType) {
	f.meta[id] = &NodeMetadata{ID: id, Title: id, Type: t, Value: value}
}

func (f *Fixture) Outbound(ctx context.Context, id string) ([]model.Edge, error) { return f.outbound[id], nil }
func (f *Fixture) Inbound(ctx context.Context, id string) ([]model.Edge, error)  { return f.inbound[id], nil }

func (f *Fixture) Metadata(ctx context.Context, id string) (*NodeMetadata, error) {
	if m, ok := f.meta[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fixture: no such node %s", id)
}
