package compact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

func TestBuild_SelfCompactionRejected(t *testing.T) {
	notes := []*model.Note{{ID: "qp-1", Title: "A", Compacts: []string{"qp-1"}}}
	_, err := Build(notes)
	assert.Error(t, err)
}

func TestBuild_NonexistentSourceRejected(t *testing.T) {
	notes := []*model.Note{{ID: "qp-1", Title: "A", Compacts: []string{"qp-ghost"}}}
	_, err := Build(notes)
	assert.Error(t, err)
}

func TestBuild_SingleOwnerViolation(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-a", Title: "A", Compacts: []string{"qp-src"}},
		{ID: "qp-b", Title: "B", Compacts: []string{"qp-src"}},
		{ID: "qp-src", Title: "Src"},
	}
	_, err := Build(notes)
	assert.Error(t, err)
}

func TestBuild_CycleRejected(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-a", Title: "A", Compacts: []string{"qp-b"}},
		{ID: "qp-b", Title: "B", Compacts: []string{"qp-a"}},
	}
	_, err := Build(notes)
	assert.Error(t, err)
}

func TestCanon_TransitiveChain(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-digest2", Title: "D2", Compacts: []string{"qp-digest1"}},
		{ID: "qp-digest1", Title: "D1", Compacts: []string{"qp-src"}},
		{ID: "qp-src", Title: "Src"},
	}
	ctx, err := Build(notes)
	require.NoError(t, err)

	canon, err := ctx.Canon("qp-src")
	require.NoError(t, err)
	assert.Equal(t, "qp-digest2", canon)

	canon, err = ctx.Canon("qp-digest2")
	require.NoError(t, err)
	assert.Equal(t, "qp-digest2", canon, "a note not itself compacted canonicalizes to itself")
}

func TestGetCompactedIds_DepthAndCap(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-digest", Title: "Digest", Compacts: []string{"qp-a", "qp-b"}},
		{ID: "qp-a", Title: "A"},
		{ID: "qp-b", Title: "B"},
	}
	ctx, err := Build(notes)
	require.NoError(t, err)

	ids, truncated := ctx.GetCompactedIds("qp-digest", 1, 0)
	assert.ElementsMatch(t, []string{"qp-a", "qp-b"}, ids)
	assert.False(t, truncated)

	ids, truncated = ctx.GetCompactedIds("qp-digest", 1, 1)
	assert.Len(t, ids, 1)
	assert.True(t, truncated)
}

func TestGetCompactionPct(t *testing.T) {
	pct := GetCompactionPct(50, []int{100, 100})
	assert.InDelta(t, 75.0, pct, 0.001)
}

func TestBuildEquivalenceMap(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-digest", Title: "Digest", Compacts: []string{"qp-a", "qp-b"}},
		{ID: "qp-a", Title: "A"},
		{ID: "qp-b", Title: "B"},
		{ID: "qp-c", Title: "C"},
	}
	ctx, err := Build(notes)
	require.NoError(t, err)

	eq, err := ctx.BuildEquivalenceMap(notes)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"qp-a", "qp-b", "qp-digest"}, eq["qp-digest"])
	assert.Equal(t, []string{"qp-c"}, eq["qp-c"])
}

func TestSuggest_FindsCohesiveCluster(t *testing.T) {
	notes := []*model.Note{
		{ID: "qp-1", Title: "One", Body: "x"},
		{ID: "qp-2", Title: "Two", Body: "y"},
		{ID: "qp-3", Title: "Three", Body: "z"},
		{ID: "qp-isolated", Title: "Alone", Body: "w"},
	}
	edges := []model.Edge{
		{From: "qp-1", To: "qp-2", LinkType: model.LinkRelated},
		{From: "qp-2", To: "qp-3", LinkType: model.LinkRelated},
		{From: "qp-3", To: "qp-1", LinkType: model.LinkRelated},
	}

	candidates := Suggest(notes, edges)
	require.Len(t, candidates, 1)
	assert.ElementsMatch(t, []string{"qp-1", "qp-2", "qp-3"}, candidates[0].IDs)
	assert.Equal(t, 1.0, candidates[0].Cohesion)
}
