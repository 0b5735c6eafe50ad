// Package index builds and maintains the metadata database from the
// filesystem store: edge resolution, adaptive/quick/basic/full indexing
// strategies, and full vs incremental rebuild dispatch (spec.md §4.5).
package index

import (
	"regexp"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// inlineLinkRegex matches `[[id]]` wiki-link occurrences in a note body
// (spec.md GLOSSARY "Source tag": "inline (from body [[id]])").
var inlineLinkRegex = regexp.MustCompile(`\[\[([A-Za-z0-9_.-]+)\]\]`)

// ExtractInlineLinks scans body for [[id]] occurrences, returning each
// distinct target id once, in first-seen order.
func ExtractInlineLinks(body string) []string {
	matches := inlineLinkRegex.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	var ids []string
	for _, m := range matches {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// resolvedLink is a note's one candidate outbound edge prior to knowing
// whether its target exists in the current id set.
type resolvedLink struct {
	TargetID string
	LinkType model.LinkType
	Source   model.EdgeSource
}

// candidateLinks returns every link a note declares, both typed
// (frontmatter) and inline (body [[id]] occurrences), before resolution
// against the current id set.
func candidateLinks(n *model.Note) []resolvedLink {
	links := make([]resolvedLink, 0, len(n.Links))
	for _, l := range n.Links {
		links = append(links, resolvedLink{TargetID: l.TargetID, LinkType: l.LinkType, Source: model.SourceTyped})
	}
	for _, id := range ExtractInlineLinks(n.Body) {
		links = append(links, resolvedLink{TargetID: id, LinkType: model.LinkRelated, Source: model.SourceInline})
	}
	return links
}
