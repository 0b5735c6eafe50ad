package pack

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Record prefixes (spec.md §6): H (header), N (note metadata), B (body
// line), S (source), L (link), A (attachment start), D (attachment data
// line), A-END (attachment end), C-END (note end), END (pack end).
//
// Each note's block is: one N line, zero or more B lines (the body,
// verbatim, one per line), zero or more S lines, zero or more L lines (this
// note's outbound typed links), zero or more attachment blocks (an A line,
// one D line holding the base64 data, A-END), then C-END. H precedes every
// note block; END
// terminates the file.
//
// Structured payloads (H, N, S, L, A) are a tab-separated prefix followed by
// a single JSON value, which keeps the format line-oriented without hand
// parsing quoted/escaped fields; B and D carry raw text after the tab.
const (
	recHeader     = "H"
	recNote       = "N"
	recBody       = "B"
	recSource     = "S"
	recLink       = "L"
	recAttachment = "A"
	recData       = "D"
	recAttachEnd  = "A-END"
	recNoteEnd    = "C-END"
	recPackEnd    = "END"
)

type recordLink struct {
	LinkType string `json:"type"`
	TargetID string `json:"id"`
}

type attachmentMeta struct {
	NoteID   string `json:"note_id"`
	Filename string `json:"filename"`
}

// WriteRecords serializes p as the line-oriented records format.
func WriteRecords(w io.Writer, p *Pack) error {
	bw := bufio.NewWriter(w)

	if err := writeJSONLine(bw, recHeader, p.Header); err != nil {
		return err
	}

	for _, n := range p.Notes {
		// The N line carries metadata only: body, sources and links follow
		// as their own B, S and L records.
		meta := n
		meta.Body, meta.Sources, meta.Links = "", nil, nil
		if err := writeJSONLine(bw, recNote, meta); err != nil {
			return err
		}
		for _, line := range strings.Split(n.Body, "\n") {
			if _, err := fmt.Fprintf(bw, "%s\t%s\n", recBody, line); err != nil {
				return err
			}
		}
		for _, s := range n.Sources {
			if err := writeJSONLine(bw, recSource, s); err != nil {
				return err
			}
		}
		for _, l := range n.Links {
			if err := writeJSONLine(bw, recLink, recordLink{LinkType: l.LinkType, TargetID: l.TargetID}); err != nil {
				return err
			}
		}
		for _, a := range p.Attachments {
			if a.NoteID != n.ID {
				continue
			}
			if err := writeJSONLine(bw, recAttachment, attachmentMeta{NoteID: a.NoteID, Filename: a.Filename}); err != nil {
				return err
			}
			encoded := base64.StdEncoding.EncodeToString(a.Data)
			if _, err := fmt.Fprintf(bw, "%s\t%s\n", recData, encoded); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(bw, "%s\n", recAttachEnd); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s\n", recNoteEnd); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(bw, "%s\n", recPackEnd); err != nil {
		return err
	}
	return bw.Flush()
}

func writeJSONLine(w io.Writer, prefix string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", prefix, payload)
	return err
}

// ReadRecords decodes the line-oriented records format.
func ReadRecords(r io.Reader) (*Pack, error) {
	p := &Pack{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var cur *Note
	var curBody []string
	var pendingAttachment *attachmentMeta

	flushNote := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.Join(curBody, "\n")
		p.Notes = append(p.Notes, *cur)
		cur = nil
		curBody = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		prefix, rest, _ := strings.Cut(line, "\t")

		switch prefix {
		case recHeader:
			if err := json.Unmarshal([]byte(rest), &p.Header); err != nil {
				return nil, fmt.Errorf("pack: decoding header: %w", err)
			}
		case recNote:
			flushNote()
			var n Note
			if err := json.Unmarshal([]byte(rest), &n); err != nil {
				return nil, fmt.Errorf("pack: decoding note: %w", err)
			}
			cur = &n
			curBody = nil
		case recBody:
			curBody = append(curBody, rest)
		case recSource:
			if cur == nil {
				return nil, fmt.Errorf("pack: S record outside a note block")
			}
			var s Source
			if err := json.Unmarshal([]byte(rest), &s); err != nil {
				return nil, fmt.Errorf("pack: decoding source: %w", err)
			}
			cur.Sources = append(cur.Sources, s)
		case recLink:
			if cur == nil {
				return nil, fmt.Errorf("pack: L record outside a note block")
			}
			var l recordLink
			if err := json.Unmarshal([]byte(rest), &l); err != nil {
				return nil, fmt.Errorf("pack: decoding link: %w", err)
			}
			cur.Links = append(cur.Links, TypedLink{LinkType: l.LinkType, TargetID: l.TargetID})
			p.Links = append(p.Links, Link{From: cur.ID, To: l.TargetID, LinkType: l.LinkType, Source: "typed"})
		case recAttachment:
			var a attachmentMeta
			if err := json.Unmarshal([]byte(rest), &a); err != nil {
				return nil, fmt.Errorf("pack: decoding attachment header: %w", err)
			}
			pendingAttachment = &a
		case recData:
			if pendingAttachment == nil {
				return nil, fmt.Errorf("pack: D record without a preceding A record")
			}
			data, err := base64.StdEncoding.DecodeString(rest)
			if err != nil {
				return nil, fmt.Errorf("pack: decoding attachment data: %w", err)
			}
			p.Attachments = append(p.Attachments, Attachment{NoteID: pendingAttachment.NoteID, Filename: pendingAttachment.Filename, Data: data})
		case recAttachEnd:
			pendingAttachment = nil
		case recNoteEnd:
			flushNote()
		case recPackEnd:
			flushNote()
			return p, nil
		default:
			return nil, fmt.Errorf("pack: unrecognized record prefix %q", prefix)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flushNote()
	return p, nil
}
