package pack

import (
	"os"
	"path/filepath"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/store"
)

// FromNotes builds a Pack snapshot of notes and the resolved edge closure
// that a selector traversal produced (spec.md §9 Example F). Attachment
// filenames listed in attachmentFiles (keyed by note id) are read from s's
// attachments directory and bundled.
func FromNotes(s *store.Store, notes []*model.Note, edges []model.Edge, attachmentFiles map[string][]string) (*Pack, error) {
	p := &Pack{Header: Header{Version: Version, StorePath: s.Root}}

	for _, n := range notes {
		p.Notes = append(p.Notes, toPackNote(n))
	}
	for _, e := range edges {
		p.Links = append(p.Links, Link{From: e.From, To: e.To, LinkType: string(e.LinkType), Source: string(e.Source)})
	}

	for noteID, filenames := range attachmentFiles {
		for _, fn := range filenames {
			data, err := os.ReadFile(filepath.Join(s.AttachmentsDirPath(), fn))
			if err != nil {
				return nil, err
			}
			p.Attachments = append(p.Attachments, Attachment{NoteID: noteID, Filename: fn, Data: data})
		}
	}

	return p, nil
}

// Load writes every note and attachment in p into s, overwriting existing
// files with the same id. It does not update the metadata database;
// callers should reindex afterward (spec.md §3 "wholly regenerable").
func Load(s *store.Store, p *Pack) error {
	for _, n := range p.Notes {
		note := toModelNote(n)
		if existing, err := s.GetNote(note.ID, ""); err == nil {
			note.Path = existing.Path
		}
		if _, err := s.SaveNote(note); err != nil {
			return err
		}
	}

	if len(p.Attachments) > 0 {
		if err := os.MkdirAll(s.AttachmentsDirPath(), 0o755); err != nil {
			return err
		}
	}
	for _, a := range p.Attachments {
		dest := filepath.Join(s.AttachmentsDirPath(), a.Filename)
		if err := os.WriteFile(dest, a.Data, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func toPackNote(n *model.Note) Note {
	pn := Note{
		ID:       n.ID,
		Title:    n.Title,
		NoteType: string(n.NoteType),
		Tags:     n.Tags,
		Body:     n.Body,
		Created:  n.Created,
		Updated:  n.Updated,
		Value:    n.Value,
		Verified: n.Verified,
		Summary:  n.Summary,
		Compacts: n.Compacts,
		Custom:   n.Custom,
	}
	for _, s := range n.Sources {
		pn.Sources = append(pn.Sources, Source{URL: s.URL, Title: s.Title, Accessed: s.Accessed})
	}
	for _, l := range n.Links {
		pn.Links = append(pn.Links, TypedLink{LinkType: string(l.LinkType), TargetID: l.TargetID})
	}
	return pn
}

func toModelNote(pn Note) *model.Note {
	n := &model.Note{
		ID:       pn.ID,
		Title:    pn.Title,
		NoteType: model.NewNoteType(pn.NoteType),
		Tags:     pn.Tags,
		Body:     pn.Body,
		Created:  pn.Created,
		Updated:  pn.Updated,
		Value:    pn.Value,
		Verified: pn.Verified,
		Summary:  pn.Summary,
		Compacts: pn.Compacts,
		Custom:   pn.Custom,
	}
	for _, s := range pn.Sources {
		n.Sources = append(n.Sources, model.Source{URL: s.URL, Title: s.Title, Accessed: s.Accessed})
	}
	for _, l := range pn.Links {
		n.Links = append(n.Links, model.TypedLink{LinkType: model.NewLinkType(l.LinkType), TargetID: l.TargetID})
	}
	return n
}
