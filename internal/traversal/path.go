package traversal

import "context"

type pathEdge struct {
	from, to string
	via      string // raw neighbor id, set only when it differs from to (canon(rawID) != rawID)
	edge     candidateNeighbor
}

// ShortestPath finds the lowest-cost path between from and to (spec.md
// §4.8). Both endpoints are canonicalized before the search; if either
// fails the min_value gate, the result is Found=false. Dispatch (BFS vs
// Dijkstra) and all filters follow the same Options contract as Tree.
func (e *Engine) ShortestPath(ctx context.Context, from, to string, o Options) (*PathResult, error) {
	canonFrom, err := e.canon(from)
	if err != nil {
		return nil, err
	}
	canonTo, err := e.canon(to)
	if err != nil {
		return nil, err
	}

	if e.valueOf(ctx, canonFrom) < o.MinValue || e.valueOf(ctx, canonTo) < o.MinValue {
		return &PathResult{Found: false}, nil
	}

	rootVia := ""
	if canonFrom != from {
		rootVia = from
	}

	if canonFrom == canonTo {
		return &PathResult{Found: true, Notes: []NoteEntry{{ID: canonFrom, Via: rootVia}}, Length: 0}, nil
	}

	var fr frontier
	if o.IgnoreValue {
		fr = newBFSFrontier()
	} else {
		fr = newHeapFrontier()
	}
	fr.push(frontierItem{id: canonFrom, cost: 0})

	dist := map[string]float64{canonFrom: 0}
	pred := map[string]pathEdge{}

	for fr.len() > 0 {
		item, ok := fr.pop()
		if !ok {
			break
		}
		u, c := item.id, item.cost
		if c > dist[u] {
			continue
		}
		if u == canonTo {
			break
		}
		if c >= o.MaxHops {
			continue
		}
		if o.MaxNodes > 0 && len(dist) >= o.MaxNodes {
			continue
		}

		neighbors := e.collectNeighbors(ctx, u, o)
		if o.MaxFanout > 0 && len(neighbors) > o.MaxFanout {
			neighbors = neighbors[:o.MaxFanout]
		}

		for _, cand := range neighbors {
			canonNeighborFrom, err := e.canon(cand.sourceID)
			if err != nil {
				return nil, err
			}
			canonNeighborTo, err := e.canon(cand.rawID)
			if err != nil {
				return nil, err
			}
			if canonNeighborFrom == canonNeighborTo {
				continue
			}
			if _, seen := dist[canonNeighborTo]; !seen {
				if e.valueOf(ctx, canonNeighborTo) < o.MinValue {
					continue
				}
			}

			neighborVia := ""
			if canonNeighborTo != cand.rawID {
				neighborVia = cand.rawID
			}

			newCost := c + EdgeCost(cand.edge.LinkType, e.valueOf(ctx, canonNeighborTo), e.Ontology, o.IgnoreValue)
			if prior, ok := dist[canonNeighborTo]; !ok || newCost < prior {
				dist[canonNeighborTo] = newCost
				pred[canonNeighborTo] = pathEdge{from: canonNeighborFrom, to: canonNeighborTo, via: neighborVia, edge: cand}
				fr.push(frontierItem{id: canonNeighborTo, cost: newCost})
			}
		}
	}

	if _, ok := dist[canonTo]; !ok {
		return &PathResult{Found: false}, nil
	}

	var notes []NoteEntry
	var edges []LinkEntry
	cur := canonTo
	curPe, ok := pred[cur]
	if !ok {
		return &PathResult{Found: false}, nil
	}
	notes = append(notes, NoteEntry{ID: cur, Hop: dist[cur], Via: curPe.via})
	for cur != canonFrom {
		pe := curPe
		edges = append(edges, LinkEntry{From: pe.from, To: pe.to, LinkType: pe.edge.edge.LinkType, Source: pe.edge.edge.Source, Via: pe.via})
		cur = pe.from
		if cur == canonFrom {
			notes = append(notes, NoteEntry{ID: cur, Hop: dist[cur], Via: rootVia})
			break
		}
		curPe, ok = pred[cur]
		if !ok {
			return &PathResult{Found: false}, nil
		}
		notes = append(notes, NoteEntry{ID: cur, Hop: dist[cur], Via: curPe.via})
	}

	for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
		notes[i], notes[j] = notes[j], notes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return &PathResult{Found: true, Notes: notes, Edges: edges, Length: dist[canonTo]}, nil
}
