package llm

import (
	"regexp"
	"strings"
)

var (
	// fencedJSONPattern matches a JSON object inside a markdown code fence.
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// bareJSONPattern matches the outermost JSON object anywhere in the text.
	bareJSONPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a JSON object out of free-form model output. Models
// wrap JSON in markdown fences, add // comments, and leave trailing
// commas; all of that is stripped. Returns "" when no object is found.
func ExtractJSON(content string) string {
	var raw string
	if m := fencedJSONPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = bareJSONPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	cleaned := strings.Join(lines, "\n")
	return trailingCommaPattern.ReplaceAllString(cleaned, "$1")
}

// stripLineComment removes a // comment from a line unless the slashes sit
// inside a JSON string literal.
func stripLineComment(line string) string {
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case ch == '/' && !inString && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
