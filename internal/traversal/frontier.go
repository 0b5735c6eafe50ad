package traversal

import "container/heap"

// frontierItem is one pending expansion: a node id at an accumulated cost.
type frontierItem struct {
	id   string
	cost float64
}

// frontier is the pending-expansion structure a traversal pulls from.
// bfsFrontier is a plain FIFO queue (unweighted mode); heapFrontier is a
// min-heap keyed by (cost, id) for deterministic tie-breaking in weighted
// mode (spec.md §4.8 "Min-heap ordering breaks ties on equal cost
// deterministically by node id").
type frontier interface {
	push(item frontierItem)
	pop() (frontierItem, bool)
	len() int
}

// bfsFrontier implements unweighted FIFO traversal order.
type bfsFrontier struct{ items []frontierItem }

func newBFSFrontier() *bfsFrontier { return &bfsFrontier{} }

func (f *bfsFrontier) push(item frontierItem) { f.items = append(f.items, item) }

func (f *bfsFrontier) pop() (frontierItem, bool) {
	if len(f.items) == 0 {
		return frontierItem{}, false
	}
	item := f.items[0]
	f.items = f.items[1:]
	return item, true
}

func (f *bfsFrontier) len() int { return len(f.items) }

// heapFrontier implements Dijkstra's min-heap, ordered by (cost, id).
type heapFrontier struct{ h frontierHeap }

func newHeapFrontier() *heapFrontier { return &heapFrontier{} }

func (f *heapFrontier) push(item frontierItem) { heap.Push(&f.h, item) }

func (f *heapFrontier) pop() (frontierItem, bool) {
	if f.h.Len() == 0 {
		return frontierItem{}, false
	}
	return heap.Pop(&f.h).(frontierItem), true
}

func (f *heapFrontier) len() int { return f.h.Len() }

type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].id < h[j].id
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
