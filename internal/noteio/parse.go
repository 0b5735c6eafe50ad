// Package noteio parses and serializes the `---\n<yaml>\n---\n<body>`
// note file format (spec.md §4.2, §6) and extracts summaries.
package noteio

import (
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

const delim = "---"

// frontmatter mirrors model.Note's serializable fields plus a catch-all
// for unrecognized keys, which round-trip into Note.Custom (spec.md §6:
// "Unknown keys preserved under custom").
type frontmatter struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Type     string            `yaml:"type,omitempty"`
	Tags     []string          `yaml:"tags,omitempty"`
	Created  *time.Time        `yaml:"created,omitempty"`
	Updated  *time.Time        `yaml:"updated,omitempty"`
	Value    *int              `yaml:"value,omitempty"`
	Verified *bool             `yaml:"verified,omitempty"`
	Sources  []model.Source    `yaml:"sources,omitempty"`
	Summary  string            `yaml:"summary,omitempty"`
	Links    []rawLink         `yaml:"links,omitempty"`
	Compacts []string          `yaml:"compacts,omitempty"`
	Rest     map[string]any    `yaml:",inline"`
}

type rawLink struct {
	Type string `yaml:"type"`
	ID   string `yaml:"id"`
}

// Parse parses a note document of the form `---\n<yaml>\n---\n<body>`.
// path is used only to annotate errors; pass "" when parsing in-memory
// content with no associated file.
func Parse(content, path string) (*model.Note, error) {
	trimmed := strings.TrimPrefix(content, "﻿")
	trimmed = strings.TrimLeft(trimmed, " \t\r\n")

	if !strings.HasPrefix(trimmed, delim) {
		return nil, invalidFM(path, "missing frontmatter delimiter (---)")
	}

	after := trimmed[len(delim):]
	endPos := strings.Index(after, "\n"+delim)
	if endPos < 0 {
		return nil, invalidFM(path, "missing closing frontmatter delimiter (---)")
	}

	yamlContent := after[:endPos]
	bodyStart := endPos + len(delim) + 1 // skip "\n---"
	var body string
	if bodyStart < len(after) {
		body = strings.TrimLeft(after[bodyStart:], "\n")
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, invalidFM(path, err.Error())
	}

	if strings.TrimSpace(fm.ID) == "" {
		return nil, invalidFM(path, "missing required field: id")
	}
	if strings.TrimSpace(fm.Title) == "" {
		return nil, invalidFM(path, "missing required field: title")
	}

	note := &model.Note{
		ID:       fm.ID,
		Title:    fm.Title,
		NoteType: model.NewNoteType(fm.Type),
		Tags:     fm.Tags,
		Body:     body,
		Value:    fm.Value,
		Verified: fm.Verified,
		Sources:  fm.Sources,
		Summary:  fm.Summary,
		Compacts: fm.Compacts,
		Path:     path,
	}
	if fm.Created != nil {
		note.Created = *fm.Created
	}
	if fm.Updated != nil {
		note.Updated = *fm.Updated
	}
	for _, l := range fm.Links {
		note.Links = append(note.Links, model.TypedLink{
			LinkType: model.NewLinkType(l.Type),
			TargetID: l.ID,
		})
	}
	if len(fm.Rest) > 0 {
		note.Custom = fm.Rest
	}
	if note.NoteType == "" {
		note.NoteType = model.TypeFleeting
	}

	return note, nil
}

func invalidFM(path, reason string) error {
	e := &qerr.Error{Kind: qerr.InvalidFrontmatter, Message: reason, Path: path}
	return e
}

// Serialize renders a note back to the `---\n<yaml>\n---\n<body>` format.
// Reserializing a parsed note and re-parsing it yields an equal note
// modulo frontmatter key ordering (spec.md §4.2, §8 property 1).
func Serialize(n *model.Note) (string, error) {
	fm := frontmatter{
		ID:       n.ID,
		Title:    n.Title,
		Type:     n.NoteType.String(),
		Tags:     n.Tags,
		Value:    n.Value,
		Verified: n.Verified,
		Sources:  n.Sources,
		Summary:  n.Summary,
		Compacts: n.Compacts,
	}
	if !n.Created.IsZero() {
		t := n.Created.UTC()
		fm.Created = &t
	}
	if !n.Updated.IsZero() {
		t := n.Updated.UTC()
		fm.Updated = &t
	}
	for _, l := range n.Links {
		fm.Links = append(fm.Links, rawLink{Type: l.LinkType.String(), ID: l.TargetID})
	}
	if len(n.Custom) > 0 {
		fm.Rest = sortedCopy(n.Custom)
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&fm); err != nil {
		return "", qerr.Wrap(qerr.Yaml, err, "serializing frontmatter for %s", n.ID)
	}
	_ = enc.Close()

	var out strings.Builder
	out.WriteString(delim)
	out.WriteByte('\n')
	out.WriteString(buf.String())
	out.WriteString(delim)
	out.WriteString("\n\n")
	out.WriteString(n.Body)
	return out.String(), nil
}

// sortedCopy returns a copy of m; yaml.v3 marshals maps in key-sorted order
// already, but this keeps the contract explicit and avoids aliasing the
// caller's map.
func sortedCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = m[k]
	}
	return out
}
