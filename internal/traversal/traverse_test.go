package traversal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldstein/qipu-sub003/internal/compact"
	"github.com/mwaldstein/qipu-sub003/internal/graph"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
)

func chain(ids ...string) *graph.Fixture {
	f := graph.NewFixture()
	for _, id := range ids {
		f.AddNode(id, model.DefaultValue)
	}
	for i := 0; i+1 < len(ids); i++ {
		f.AddEdge(model.Edge{From: ids[i], To: ids[i+1], LinkType: model.LinkRelated, Source: model.SourceTyped})
	}
	return f
}

// Example B: chain n0->n1->n2->n3->n4 with max_hops=2.
func TestTree_ExampleB_MaxHopsTruncation(t *testing.T) {
	f := chain("n0", "n1", "n2", "n3", "n4")
	e := NewEngine(f, ontology.New(), nil, nil)

	res, err := e.Tree(context.Background(), "n0", Options{Direction: DirOut, MaxHops: 2, MaxNodes: 1000, MaxEdges: 1000, IgnoreValue: true})
	require.NoError(t, err)

	ids := make([]string, len(res.Notes))
	for i, n := range res.Notes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"n0", "n1", "n2"}, ids)

	require.Len(t, res.SpanningTree, 2)
	assert.Equal(t, SpanEntry{From: "n0", To: "n1", Hop: 1, LinkType: model.LinkRelated}, res.SpanningTree[0])
	assert.Equal(t, SpanEntry{From: "n1", To: "n2", Hop: 2, LinkType: model.LinkRelated}, res.SpanningTree[1])

	assert.True(t, res.Truncated)
	assert.Equal(t, ReasonMaxHops, res.Reason)
}

// Example C: digest compacts {m1, m2}; edges a->m1, m2->b.
func TestTree_ExampleC_CompactionCanonicalization(t *testing.T) {
	f := graph.NewFixture()
	for _, id := range []string{"a", "m1", "m2", "b", "digest"} {
		f.AddNode(id, model.DefaultValue)
	}
	f.AddEdge(model.Edge{From: "a", To: "m1", LinkType: model.LinkRelated, Source: model.SourceTyped})
	f.AddEdge(model.Edge{From: "m2", To: "b", LinkType: model.LinkRelated, Source: model.SourceTyped})

	notes := []*model.Note{
		{ID: "a"}, {ID: "b"}, {ID: "m1"}, {ID: "m2"},
		{ID: "digest", Compacts: []string{"m1", "m2"}},
	}
	cctx, err := compact.Build(notes)
	require.NoError(t, err)
	eqMap, err := cctx.BuildEquivalenceMap(notes)
	require.NoError(t, err)

	e := NewEngine(f, ontology.New(), cctx, eqMap)
	res, err := e.Tree(context.Background(), "a", Options{Direction: DirOut, MaxHops: 3, MaxNodes: 100, MaxEdges: 100, IgnoreValue: true})
	require.NoError(t, err)

	ids := make([]string, len(res.Notes))
	for i, n := range res.Notes {
		ids[i] = n.ID
	}
	assert.ElementsMatch(t, []string{"a", "digest", "b"}, ids)
	assert.NotContains(t, ids, "m1")
	assert.NotContains(t, ids, "m2")

	require.Len(t, res.Links, 2)
	var viaSeen []string
	for _, l := range res.Links {
		viaSeen = append(viaSeen, l.Via)
	}
	assert.Contains(t, viaSeen, "m1")
	assert.Contains(t, viaSeen, "m2")
}

// Example D: values root=90, child_high=95, child_low=30; min_value=80.
func TestTree_ExampleD_MinValueFiltersChildren(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("root", 90)
	f.AddNode("child_high", 95)
	f.AddNode("child_low", 30)
	f.AddEdge(model.Edge{From: "root", To: "child_high", LinkType: model.LinkRelated, Source: model.SourceTyped})
	f.AddEdge(model.Edge{From: "root", To: "child_low", LinkType: model.LinkRelated, Source: model.SourceTyped})

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.Tree(context.Background(), "root", Options{Direction: DirOut, MaxHops: 3, MaxNodes: 100, MaxEdges: 100, MinValue: 80, IgnoreValue: true})
	require.NoError(t, err)

	ids := make([]string, len(res.Notes))
	for i, n := range res.Notes {
		ids[i] = n.ID
	}
	assert.ElementsMatch(t, []string{"root", "child_high"}, ids)
}

// Example D, second half: root fails the min_value gate itself.
func TestTree_ExampleD_MinValueExcludesRoot(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("root", 20)

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.Tree(context.Background(), "root", Options{Direction: DirOut, MaxHops: 3, MinValue: 80, IgnoreValue: true})
	require.NoError(t, err)

	assert.Empty(t, res.Notes)
	assert.True(t, res.Truncated)
	assert.Equal(t, ReasonMinValueExcluded, res.Reason)
}

func TestTree_MaxNodesTruncation(t *testing.T) {
	f := chain("n0", "n1", "n2", "n3")
	e := NewEngine(f, ontology.New(), nil, nil)

	res, err := e.Tree(context.Background(), "n0", Options{Direction: DirOut, MaxHops: 10, MaxNodes: 2, MaxEdges: 100, IgnoreValue: true})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, ReasonMaxNodes, res.Reason)
	assert.LessOrEqual(t, len(res.Notes), 2)
}

func TestTree_MaxFanoutTruncation(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("root", model.DefaultValue)
	for _, id := range []string{"c1", "c2", "c3"} {
		f.AddNode(id, model.DefaultValue)
		f.AddEdge(model.Edge{From: "root", To: id, LinkType: model.LinkRelated, Source: model.SourceTyped})
	}

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.Tree(context.Background(), "root", Options{Direction: DirOut, MaxHops: 2, MaxNodes: 100, MaxEdges: 100, MaxFanout: 2, IgnoreValue: true})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, ReasonMaxFanout, res.Reason)
	assert.Len(t, res.Notes, 3) // root + 2 admitted children
}

func TestTree_SemanticInversionInbound(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("a", model.DefaultValue)
	f.AddNode("b", model.DefaultValue)
	f.AddEdge(model.Edge{From: "b", To: "a", LinkType: model.LinkSupports, Source: model.SourceTyped})

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.Tree(context.Background(), "a", Options{Direction: DirIn, SemanticInversion: true, MaxHops: 2, MaxNodes: 100, MaxEdges: 100, IgnoreValue: true})
	require.NoError(t, err)

	require.Len(t, res.Links, 1)
	assert.Equal(t, "a", res.Links[0].From)
	assert.Equal(t, "b", res.Links[0].To)
	assert.Equal(t, model.LinkSupportedBy, res.Links[0].LinkType)
	assert.Equal(t, model.SourceVirtual, res.Links[0].Source)
}

func TestTree_DijkstraPrefersHigherValueNeighbor(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("root", model.DefaultValue)
	f.AddNode("mid_high", 90)
	f.AddNode("mid_low", 10)
	f.AddNode("target", model.DefaultValue)
	f.AddEdge(model.Edge{From: "root", To: "mid_high", LinkType: model.LinkRelated, Source: model.SourceTyped})
	f.AddEdge(model.Edge{From: "root", To: "mid_low", LinkType: model.LinkRelated, Source: model.SourceTyped})
	f.AddEdge(model.Edge{From: "mid_high", To: "target", LinkType: model.LinkRelated, Source: model.SourceTyped})
	f.AddEdge(model.Edge{From: "mid_low", To: "target", LinkType: model.LinkRelated, Source: model.SourceTyped})

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.ShortestPath(context.Background(), "root", "target", Options{Direction: DirOut, MaxHops: 10, MaxNodes: 100})
	require.NoError(t, err)
	require.True(t, res.Found)

	var viaHigh bool
	for _, n := range res.Notes {
		if n.ID == "mid_high" {
			viaHigh = true
		}
	}
	assert.True(t, viaHigh, "cheaper path should route through the higher-value neighbor")
}

func TestShortestPath_BFSUnweightedChain(t *testing.T) {
	f := chain("n0", "n1", "n2", "n3")
	e := NewEngine(f, ontology.New(), nil, nil)

	res, err := e.ShortestPath(context.Background(), "n0", "n3", Options{Direction: DirOut, MaxHops: 10, MaxNodes: 100, IgnoreValue: true})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, float64(3), res.Length)

	ids := make([]string, len(res.Notes))
	for i, n := range res.Notes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"n0", "n1", "n2", "n3"}, ids)
	assert.Len(t, res.Edges, 3)
}

func TestShortestPath_NotFound(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("a", model.DefaultValue)
	f.AddNode("b", model.DefaultValue)

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.ShortestPath(context.Background(), "a", "b", Options{Direction: DirOut, MaxHops: 5, MaxNodes: 100})
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestShortestPath_TrivialSameNode(t *testing.T) {
	f := graph.NewFixture()
	f.AddNode("a", model.DefaultValue)

	e := NewEngine(f, ontology.New(), nil, nil)
	res, err := e.ShortestPath(context.Background(), "a", "a", Options{Direction: DirOut, MaxHops: 5})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, float64(0), res.Length)
	assert.Len(t, res.Notes, 1)
}
