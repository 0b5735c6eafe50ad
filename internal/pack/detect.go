package pack

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Read auto-detects the pack serialization (spec.md §6 "Two serializations,
// auto-detected") and decodes it. JSON packs start with '{' once leading
// whitespace is skipped; anything else is treated as the records format.
func Read(r io.Reader) (*Pack, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("pack: empty input")
			}
			return nil, err
		}
		if b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r' {
			if _, err := br.Discard(1); err != nil {
				return nil, err
			}
			continue
		}
		if b[0] == '{' {
			return ReadJSON(br)
		}
		return ReadRecords(br)
	}
}

// Sniff reports which format data is encoded in, without consuming it.
func Sniff(data []byte) string {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return "json"
	}
	return "records"
}
