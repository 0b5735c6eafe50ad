package noteio

import (
	"strings"

	"github.com/mwaldstein/qipu-sub003/internal/model"
)

// Summary extracts a note's summary using the fallback order from
// spec.md §4.2: explicit frontmatter field, then a "## Summary" body
// section, then the first paragraph after any leading heading.
func Summary(n *model.Note) string {
	if s := strings.TrimSpace(n.Summary); s != "" {
		return n.Summary
	}
	if s, ok := extractSummarySection(n.Body); ok {
		return s
	}
	if s, ok := extractFirstParagraph(n.Body); ok {
		return s
	}
	return ""
}

// extractSummarySection finds a "## Summary" heading and returns the
// content up to the next heading or blank line.
func extractSummarySection(body string) (string, bool) {
	lines := strings.Split(body, "\n")
	inSummary := false
	inFirstParagraph := false
	var collected []string

	for _, line := range lines {
		if strings.HasPrefix(line, "## Summary") {
			inSummary = true
			continue
		}
		if !inSummary {
			continue
		}
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "# ") {
			break
		}
		if !inFirstParagraph && strings.TrimSpace(line) == "" {
			continue
		}
		inFirstParagraph = true
		if strings.TrimSpace(line) == "" {
			break
		}
		collected = append(collected, line)
	}

	if len(collected) == 0 {
		return "", false
	}
	summary := strings.TrimRight(strings.Join(collected, "\n"), " \t\n")
	if summary == "" {
		return "", false
	}
	return summary, true
}

// extractFirstParagraph returns the first paragraph after skipping any
// leading headings and blank lines, joining wrapped lines with a space.
func extractFirstParagraph(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", false
	}

	lines := strings.Split(trimmed, "\n")
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			i++
			continue
		}
		break
	}

	var para []string
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			break
		}
		para = append(para, lines[i])
	}

	if len(para) == 0 {
		return "", false
	}
	return strings.Join(para, " "), true
}
