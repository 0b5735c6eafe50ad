package compact

import (
	"sort"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// Candidate is a proposed cluster of notes to fold into a single digest
// (spec.md §4.6 "suggest"). Field names mirror the original CLI's
// candidate JSON shape (commands/compact/suggest.rs).
type Candidate struct {
	IDs            []string
	NodeCount      int
	InternalEdges  int
	BoundaryEdges  int
	BoundaryRatio  float64
	Cohesion       float64
	EstimatedSize  int
	Score          float64
}

// minClusterSize excludes singleton/pair clusters from suggestions: a
// cluster smaller than this rarely justifies a digest note.
const minClusterSize = 3

// maxClusterSize caps a single candidate's node count so `suggest` doesn't
// propose compacting an entire densely-linked graph into one digest.
const maxClusterSize = 20

// Suggest proposes compaction candidates by finding undirected connected
// components of the note graph, scoring each by edge cohesion (internal
// edges over total edges touching the component) and size. Components
// above maxClusterSize are skipped rather than split, since splitting
// requires a clustering heuristic beyond what this module implements.
func Suggest(notes []*model.Note, edges []model.Edge) []Candidate {
	adjacency := make(map[string]map[string]bool)
	addEdge := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]bool)
		}
		adjacency[a][b] = true
	}
	for _, e := range edges {
		addEdge(e.From, e.To)
		addEdge(e.To, e.From)
	}

	sizes := make(map[string]int, len(notes))
	for _, n := range notes {
		sizes[n.ID] = estimateSize(n)
		if adjacency[n.ID] == nil {
			adjacency[n.ID] = make(map[string]bool)
		}
	}

	visited := make(map[string]bool)
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	var candidates []Candidate
	for _, id := range ids {
		if visited[id] {
			continue
		}
		component := bfsComponent(id, adjacency, visited)
		if len(component) < minClusterSize || len(component) > maxClusterSize {
			continue
		}
		candidates = append(candidates, buildCandidate(component, adjacency, sizes))
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].IDs[0] < candidates[j].IDs[0]
	})

	return candidates
}

func bfsComponent(start string, adjacency map[string]map[string]bool, visited map[string]bool) []string {
	visited[start] = true
	queue := []string{start}
	var component []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		component = append(component, cur)

		neighbors := make([]string, 0, len(adjacency[cur]))
		for n := range adjacency[cur] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)
		for _, n := range neighbors {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	sort.Strings(component)
	return component
}

func buildCandidate(component []string, adjacency map[string]map[string]bool, sizes map[string]int) Candidate {
	inSet := make(map[string]bool, len(component))
	for _, id := range component {
		inSet[id] = true
	}

	internal, boundary := 0, 0
	estimatedSize := 0
	for _, id := range component {
		estimatedSize += sizes[id]
		for n := range adjacency[id] {
			if inSet[n] {
				internal++
			} else {
				boundary++
			}
		}
	}
	// Each internal edge was counted from both endpoints.
	internal /= 2

	total := internal + boundary
	cohesion := 0.0
	boundaryRatio := 0.0
	if total > 0 {
		cohesion = float64(internal) / float64(total)
		boundaryRatio = float64(boundary) / float64(total)
	}

	// Score rewards high cohesion and rewards larger clusters linearly
	// (each node adds a tenth to the multiplier), so at equal cohesion a
	// larger cluster outranks a smaller one; cohesion scales the whole
	// score, so a loosely linked cluster scores low whatever its size.
	score := cohesion * 100.0 * (1.0 + float64(len(component))/10.0)

	return Candidate{
		IDs:           component,
		NodeCount:     len(component),
		InternalEdges: internal,
		BoundaryEdges: boundary,
		BoundaryRatio: boundaryRatio,
		Cohesion:      cohesion,
		EstimatedSize: estimatedSize,
		Score:         score,
	}
}

func estimateSize(n *model.Note) int {
	return len(n.Title) + len(n.Body)
}
