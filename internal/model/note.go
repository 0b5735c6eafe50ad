// Package model holds the core domain types shared across the store, index,
// graph, and compaction layers: notes, typed links, and the index-level
// edge representation (spec.md §3).
package model

import (
	"strings"
	"time"
)

// NoteType is a case-folded, extensible note classification. The standard
// set is {fleeting, literature, permanent, moc}; any other string is a
// valid custom type.
type NoteType string

// Standard note types (spec.md §3).
const (
	TypeFleeting   NoteType = "fleeting"
	TypeLiterature NoteType = "literature"
	TypePermanent  NoteType = "permanent"
	TypeMOC        NoteType = "moc"
)

// NewNoteType case-folds an arbitrary string into a NoteType.
func NewNoteType(s string) NoteType {
	if s == "" {
		return TypeFleeting
	}
	return NoteType(strings.ToLower(s))
}

// IsMOC reports whether this is the Map-of-Content type, which the index
// builder always indexes regardless of adaptive strategy (spec.md §4.5).
func (t NoteType) IsMOC() bool { return t == TypeMOC }

func (t NoteType) String() string { return string(t) }

// LinkType is a case-folded link relation name (spec.md §3).
type LinkType string

// Standard ontology link types and their standard inverses.
const (
	LinkRelated     LinkType = "related"
	LinkSameAs      LinkType = "same-as"
	LinkDerivedFrom LinkType = "derived-from"
	LinkDerivedTo   LinkType = "derived-to"
	LinkSupports    LinkType = "supports"
	LinkSupportedBy LinkType = "supported-by"
	LinkContradicts LinkType = "contradicts"
	LinkContrBy     LinkType = "contradicted-by"
	LinkPartOf      LinkType = "part-of"
	LinkHasPart     LinkType = "has-part"
	LinkAnswers     LinkType = "answers"
	LinkAnsweredBy  LinkType = "answered-by"
	LinkRefines     LinkType = "refines"
	LinkRefinedBy   LinkType = "refined-by"
	LinkAliasOf     LinkType = "alias-of"
	LinkHasAlias    LinkType = "has-alias"
	LinkFollows     LinkType = "follows"
	LinkPrecedes    LinkType = "precedes"
)

// NewLinkType case-folds an arbitrary string into a LinkType, defaulting to
// "related" for the empty string (mirrors original_source's
// `impl Default for LinkType`).
func NewLinkType(s string) LinkType {
	if s == "" {
		return LinkRelated
	}
	return LinkType(strings.ToLower(s))
}

func (t LinkType) String() string { return string(t) }

// TypedLink is a single outbound link as recorded in a note's frontmatter.
type TypedLink struct {
	LinkType LinkType `yaml:"type"`
	TargetID string   `yaml:"id"`
}

// Source is an external reference attached to a note (e.g. a URL the note
// was derived from).
type Source struct {
	URL      string `yaml:"url"`
	Title    string `yaml:"title,omitempty"`
	Accessed string `yaml:"accessed,omitempty"`
}

// Note is the atomic unit of the store (spec.md §3). Invariants: ID and
// Title are non-empty; Value is in [0,100].
type Note struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	NoteType NoteType  `yaml:"type"`
	Tags     []string  `yaml:"tags,omitempty"`
	Body     string    `yaml:"-"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`

	Value    *int  `yaml:"value,omitempty"`
	Verified *bool `yaml:"verified,omitempty"`

	Sources []Source `yaml:"sources,omitempty"`
	Summary string   `yaml:"summary,omitempty"`

	Links    []TypedLink `yaml:"links,omitempty"`
	Compacts []string    `yaml:"compacts,omitempty"`

	Custom map[string]any `yaml:"custom,omitempty"`

	// Path is the filesystem path this note was loaded from/will be saved
	// to. Not part of the YAML frontmatter; populated by the store.
	Path string `yaml:"-"`
}

// DefaultValue is the implicit note value when Value is unset (spec.md §3, §4.8).
const DefaultValue = 50

// ValueOrDefault returns the note's value, defaulting to DefaultValue.
func (n *Note) ValueOrDefault() int {
	if n.Value == nil {
		return DefaultValue
	}
	return *n.Value
}

// IsVerified reports the verified flag, defaulting to false.
func (n *Note) IsVerified() bool {
	return n.Verified != nil && *n.Verified
}

// Validate checks the note invariants from spec.md §3.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errEmptyID
	}
	if strings.TrimSpace(n.Title) == "" {
		return errEmptyTitle
	}
	if n.Value != nil && (*n.Value < 0 || *n.Value > 100) {
		return errValueRange
	}
	return nil
}

var (
	errEmptyID    = simpleErr("note id must be non-empty")
	errEmptyTitle = simpleErr("note title must be non-empty")
	errValueRange = simpleErr("note value must be in [0,100]")
)

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

// EdgeSource tags how an edge was derived (spec.md §3, GLOSSARY "Source tag").
type EdgeSource string

const (
	SourceTyped   EdgeSource = "typed"
	SourceInline  EdgeSource = "inline"
	SourceVirtual EdgeSource = "virtual"
)

// Edge is the index-level representation of a directed relationship
// between two notes.
type Edge struct {
	From     string
	To       string
	LinkType LinkType
	Source   EdgeSource
}
