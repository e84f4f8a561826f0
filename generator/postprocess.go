package generator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var titleRe = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)

// PostProcess derives display fields from raw model text. Text is kept verbatim.
func PostProcess(raw string) Plan {
	return Plan{
		Text:    raw,
		Title:   extractTitle(raw),
		Summary: extractSummary(raw, 160),
	}
}

func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.Trim(strings.TrimSpace(m[1]), "*_")
	}
	return ""
}

// extractSummary takes the first plain paragraph line, skipping headings, fences and list markers.
func extractSummary(md string, limit int) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") ||
			strings.HasPrefix(line, "|") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			continue
		}
		return truncateRunes(line, limit)
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "…"
}
