package traversal

import "github.com/mwaldstein/qipu-sub003/internal/model"

// NoteEntry is one discovered node in a TreeResult or PathResult. Via is
// set when the raw neighbor id differed from its canonicalized form
// (spec.md §4.6 "via = <original_id>").
type NoteEntry struct {
	ID  string
	Hop float64
	Via string
}

// LinkEntry is one emitted edge, canonicalized through any compaction
// context in effect.
type LinkEntry struct {
	From     string
	To       string
	LinkType model.LinkType
	Source   model.EdgeSource
	Via      string
}

// SpanEntry is one spanning-tree edge `(from, to, hop, link_type)`.
type SpanEntry struct {
	From     string
	To       string
	Hop      float64
	LinkType model.LinkType
}

// TreeResult is the outcome of a bounded traversal (spec.md §4.8).
type TreeResult struct {
	Notes        []NoteEntry
	Links        []LinkEntry
	SpanningTree []SpanEntry
	Truncated    bool
	Reason       Reason
}

// PathResult is the outcome of a shortest-path search (spec.md §4.8).
type PathResult struct {
	Found  bool
	Notes  []NoteEntry
	Edges  []LinkEntry
	Length float64
}
