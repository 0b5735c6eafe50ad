package pack

import (
	"encoding/json"
	"io"
)

// WriteJSON serializes p as the JSON pack format: a single object
// `{header, notes[], links[], attachments[]}` (spec.md §6). Attachment
// bytes are base64-encoded automatically by encoding/json's []byte
// handling.
func WriteJSON(w io.Writer, p *Pack) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadJSON decodes the JSON pack format.
func ReadJSON(r io.Reader) (*Pack, error) {
	var p Pack
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
