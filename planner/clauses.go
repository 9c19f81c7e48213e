package planner

import "strings"

// clauseSeparators is the fixed, ordered list of connective separators.
// Each separator further splits every fragment produced by the previous
// ones, so earlier entries take precedence on overlapping boundaries.
var clauseSeparators = []string{
	". ", "? ", "! ",
	" and then ", " then ", " and ",
	", then ", ", and ",
}

// SplitClauses breaks raw input into independent clauses. Output keeps
// the original left-to-right order; fragments that trim to empty are
// dropped. A clause containing no separator passes through unchanged, so
// splitting is idempotent on its own output.
func SplitClauses(text string) []string {
	parts := []string{strings.ReplaceAll(text, "\n", " ")}
	for _, sep := range clauseSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	clauses := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			clauses = append(clauses, trimmed)
		}
	}
	return clauses
}
