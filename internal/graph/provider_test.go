package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
)

func TestInvert(t *testing.T) {
	o := ontology.New()
	e := model.Edge{From: "qp-1", To: "qp-2", LinkType: model.LinkSupports, Source: model.SourceTyped}

	inv := Invert(e, o)
	assert.Equal(t, "qp-2", inv.From)
	assert.Equal(t, "qp-1", inv.To)
	assert.Equal(t, model.LinkSupportedBy, inv.LinkType)
	assert.Equal(t, model.SourceVirtual, inv.Source)
}

func TestFixtureProvider(t *testing.T) {
	f := NewFixture()
	f.AddNode("qp-1", 50)
	f.AddEdge(model.Edge{From: "qp-1", To: "qp-2", LinkType: model.LinkRelated})

	ctx := context.Background()
	out, err := f.Outbound(ctx, "qp-1")
	assert.NoError(t, err)
	assert.Len(t, out, 1)

	m, err := f.Metadata(ctx, "qp-1")
	assert.NoError(t, err)
	assert.Equal(t, 50, m.Value)
}
