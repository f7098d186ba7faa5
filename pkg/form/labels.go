package form

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// Label converts a field key into a human-friendly label, splitting on
// underscores, dashes and camelCase boundaries: "jobRole" -> "Job Role".
func Label(key string) string {
	if key == "" {
		return ""
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(key, -1) {
		if word == "" {
			continue
		}
		for _, part := range strings.Fields(splitCamel(word)) {
			segments = append(segments, TitleCase(part))
		}
	}
	return strings.Join(segments, " ")
}

// TitleCase upper-cases the first letter and lower-cases the rest.
func TitleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isLower(rune(input[i-1])) && isUpper(r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
