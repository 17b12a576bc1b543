package pipeline

import (
	"strings"
	"unicode"
)

// cleanModelText trims whitespace and strips a surrounding ``` fence that some
// models wrap plain answers in.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening line (``` or ```text).
	idx := strings.Index(s, "\n")
	if idx == -1 {
		return s
	}
	s = s[idx+1:]

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// Suggestions splits formatted advice into its list items. Lines starting
// with a bullet or a number marker are items; when there are none, every
// non-blank line is one.
func Suggestions(formatted string) []string {
	var items, lines []string
	for _, line := range strings.Split(formatted, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if item, ok := listItem(line); ok && item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}
	if lines == nil {
		return []string{}
	}
	return lines
}

// listItem strips a leading "-", "*", "•" or "1." / "1)" marker.
func listItem(line string) (string, bool) {
	for _, bullet := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(line[len(bullet):]), true
		}
	}
	digits := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits > 0 && digits+1 < len(line) && (line[digits] == '.' || line[digits] == ')') && line[digits+1] == ' ' {
		return strings.TrimSpace(line[digits+2:]), true
	}
	return line, false
}
