// Package idgen generates collision-free note IDs (spec.md §4.1): a short
// stable ID under a configurable scheme, checked against both the current
// store and every branch of the surrounding git repository so a
// protected-branch workflow can't collide an ID that only exists on another
// branch.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Scheme selects the ID generation strategy (config.toml `id_scheme`).
type Scheme string

const (
	// SchemeHash produces short base36 content hashes, e.g. "qp-a1b2c3".
	SchemeHash Scheme = "hash"
	// SchemeSemantic produces slugified-title IDs, e.g. "qp-machine_learning".
	SchemeSemantic Scheme = "semantic"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// EncodeBase36 converts data to a base36 string of exactly length chars,
// left-padding with zeros or truncating to the least-significant digits.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)
	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	str := string(chars)
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// hashID produces a deterministic-looking but nonce-salted base36 hash ID.
func hashID(prefix, title string, nonce int, length int) string {
	content := fmt.Sprintf("%s|%d|%d", title, time.Now().UnixNano(), nonce)
	sum := sha256.Sum256([]byte(content))
	numBytes := 4
	if length <= 4 {
		numBytes = 3
	}
	return fmt.Sprintf("%s-%s", prefix, EncodeBase36(sum[:numBytes], length))
}

var (
	nonAlphanumericRegex   = regexp.MustCompile(`[^a-z0-9]+`)
	multipleUnderscoreRegx = regexp.MustCompile(`_+`)
)

// StopWords are filtered out of titles when building a semantic slug.
var StopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "from": true, "as": true,
	"and": true, "or": true, "but": true, "nor": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true,
	"this": true, "that": true, "these": true, "those": true, "it": true, "its": true,
}

const maxSlugLength = 46

// Slugify converts a title into a lowercase, underscore-separated slug
// with stop words removed, matching the teacher's GenerateSlug contract.
func Slugify(title string) string {
	if title == "" {
		return "untitled"
	}
	slug := strings.ToLower(title)
	slug = nonAlphanumericRegex.ReplaceAllString(slug, " ")
	words := strings.Fields(slug)

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !StopWords[w] {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 && len(words) > 0 {
		filtered = words[:1]
	}
	slug = strings.Join(filtered, "_")

	if len(slug) > 0 && !unicode.IsLetter(rune(slug[0])) {
		slug = "n" + slug
	}
	if len(slug) > maxSlugLength {
		truncated := slug[:maxSlugLength]
		if idx := strings.LastIndex(truncated, "_"); idx > maxSlugLength/2 {
			truncated = truncated[:idx]
		}
		slug = truncated
	}
	if len(slug) < 3 {
		slug = slug + strings.Repeat("x", 3-len(slug))
	}
	slug = strings.Trim(slug, "_")
	slug = multipleUnderscoreRegx.ReplaceAllString(slug, "_")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// Generate produces an ID not present in existingIDs under the given
// scheme, retrying with a fresh nonce (hash scheme) or numeric suffix
// (semantic scheme) until unique (spec.md §4.1).
func Generate(scheme Scheme, prefix, title string, existingIDs map[string]bool) string {
	switch scheme {
	case SchemeSemantic:
		slug := Slugify(title)
		base := prefix + "-" + slug
		id := base
		for suffix := 2; existingIDs[id]; suffix++ {
			id = fmt.Sprintf("%s_%d", base, suffix)
			if suffix > 9999 {
				break
			}
		}
		return id
	default: // SchemeHash
		for nonce := 0; nonce < 10000; nonce++ {
			id := hashID(prefix, title, nonce, 6)
			if !existingIDs[id] {
				return id
			}
		}
		// Extremely unlikely fallback: widen the hash.
		return hashID(prefix, title, int(time.Now().UnixNano()), 8)
	}
}

// Filename builds the deterministic, human-readable filename
// `<id>-<slugified-title>.<ext>` for a note (spec.md §4.1).
func Filename(id, title, ext string) string {
	slug := Slugify(title)
	if ext == "" {
		ext = "md"
	}
	return fmt.Sprintf("%s-%s.%s", id, slug, ext)
}
