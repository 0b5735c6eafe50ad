// Package doctor implements the validator (spec.md §4.10): a policy-driven
// integrity check suite over a Store and its metadata database, with an
// idempotent --fix path for the categories that are safely auto-repairable.
// Grounded on the teacher's own validation conventions (internal/storage
// duplicate/orphan detection helpers) and spec.md §4.10's category list.
package doctor

import (
	"context"
	"os"
	"sort"

	"github.com/mwaldstein/qipu-sub003/internal/compact"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
	"github.com/mwaldstein/qipu-sub003/internal/storage/sqlite"
	"github.com/mwaldstein/qipu-sub003/internal/store"
)

// Severity classifies an Issue's urgency.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Category names the kind of integrity problem found.
type Category string

const (
	CategoryDuplicateIDs        Category = "duplicate_ids"
	CategoryMissingFiles        Category = "missing_files"
	CategoryBrokenLinks         Category = "broken_links"
	CategoryOrphanedNotes       Category = "orphaned_notes"
	CategoryOntologyViolations  Category = "ontology_violations"
	CategoryCompactionInvariant Category = "compaction_invariant"
)

// Issue is one reported problem (spec.md §4.10).
type Issue struct {
	Severity Severity
	Category Category
	Message  string
	Fixable  bool
	NoteID   string
	Path     string
}

// Doctor runs the check suite against a Store and its index.
type Doctor struct {
	Store *store.Store
	DB    *sqlite.DB
	O     *ontology.Ontology
}

// New builds a Doctor. O may be nil to skip ontology_violations checks.
func New(s *store.Store, db *sqlite.DB, o *ontology.Ontology) *Doctor {
	return &Doctor{Store: s, DB: db, O: o}
}

// Check runs every category and returns the combined, deterministically
// ordered issue list.
func (d *Doctor) Check(ctx context.Context) ([]Issue, error) {
	var issues []Issue

	dup, err := d.checkDuplicateIDs()
	if err != nil {
		return nil, err
	}
	issues = append(issues, dup...)

	missing, err := d.checkMissingFiles(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, missing...)

	broken, err := d.checkBrokenLinks(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, broken...)

	orphans, err := d.checkOrphanedNotes(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, orphans...)

	ontologyIssues, err := d.checkOntologyViolations(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, ontologyIssues...)

	compactionIssues, err := d.checkCompactionInvariant()
	if err != nil {
		return nil, err
	}
	issues = append(issues, compactionIssues...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Category != issues[j].Category {
			return issues[i].Category < issues[j].Category
		}
		if issues[i].NoteID != issues[j].NoteID {
			return issues[i].NoteID < issues[j].NoteID
		}
		return issues[i].Path < issues[j].Path
	})
	return issues, nil
}

// checkDuplicateIDs scans the filesystem (not the database — duplicate ids
// arise when two files declare the same id, which the DB's PRIMARY KEY
// collapses away) for notes sharing the same id across distinct paths.
func (d *Doctor) checkDuplicateIDs() ([]Issue, error) {
	notes, err := d.Store.ListNotes()
	if err != nil {
		return nil, err
	}

	byID := make(map[string][]string)
	for _, n := range notes {
		byID[n.ID] = append(byID[n.ID], n.Path)
	}

	var issues []Issue
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		paths := byID[id]
		if len(paths) <= 1 {
			continue
		}
		sort.Strings(paths)
		for _, p := range paths[1:] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryDuplicateIDs,
				Message:  "duplicate id " + id + " also declared at " + p,
				Fixable:  true,
				NoteID:   id,
				Path:     p,
			})
		}
	}
	return issues, nil
}

// checkMissingFiles finds notes rows whose filesystem path no longer
// exists.
func (d *Doctor) checkMissingFiles(ctx context.Context) ([]Issue, error) {
	rows, err := d.DB.ListRows(ctx)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, r := range rows {
		if _, err := os.Stat(r.Path); os.IsNotExist(err) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Category: CategoryMissingFiles,
				Message:  "indexed note " + r.ID + " has no file at " + r.Path,
				Fixable:  true,
				NoteID:   r.ID,
				Path:     r.Path,
			})
		}
	}
	return issues, nil
}

// checkBrokenLinks surfaces every unresolved typed or inline link recorded
// during indexing.
func (d *Doctor) checkBrokenLinks(ctx context.Context) ([]Issue, error) {
	refs, err := d.DB.AllUnresolved(ctx)
	if err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(refs))
	for _, r := range refs {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Category: CategoryBrokenLinks,
			Message:  r.SourceID + " links to nonexistent note " + r.TargetRef,
			Fixable:  false,
			NoteID:   r.SourceID,
		})
	}
	return issues, nil
}

// checkOrphanedNotes is warning-only: notes with no inbound edges are a
// normal feature of a Zettelkasten (many fleeting notes are never linked
// to), not an error.
func (d *Doctor) checkOrphanedNotes(ctx context.Context) ([]Issue, error) {
	ids, err := d.DB.OrphanIDs(ctx)
	if err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(ids))
	for _, id := range ids {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryOrphanedNotes,
			Message:  id + " has no inbound links",
			Fixable:  false,
			NoteID:   id,
		})
	}
	return issues, nil
}

// checkOntologyViolations only applies in replacement mode, where the
// standard inverse table is ignored entirely and every link type in use
// must be explicitly declared (spec.md §4.10 "unknown link types in strict
// mode").
func (d *Doctor) checkOntologyViolations(ctx context.Context) ([]Issue, error) {
	if d.O == nil || d.O.Mode != ontology.ModeReplacement {
		return nil, nil
	}

	edges, err := d.DB.AllTypedEdges(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.LinkType]bool)
	var issues []Issue
	for _, e := range edges {
		if seen[e.LinkType] {
			continue
		}
		if _, ok := d.O.Custom[e.LinkType]; ok {
			continue
		}
		seen[e.LinkType] = true
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: CategoryOntologyViolations,
			Message:  "link type " + string(e.LinkType) + " is not declared in the replacement ontology",
			Fixable:  false,
		})
	}
	return issues, nil
}

// checkCompactionInvariant attempts to build a compaction context from the
// current notes; any invariant violation compact.Build rejects becomes a
// single reported issue rather than aborting the whole check suite.
func (d *Doctor) checkCompactionInvariant() ([]Issue, error) {
	notes, err := d.Store.ListNotes()
	if err != nil {
		return nil, err
	}

	if _, err := compact.Build(notes); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Category: CategoryCompactionInvariant,
			Message:  err.Error(),
			Fixable:  false,
		}}, nil
	}
	return nil, nil
}
