package planner

import (
	"fmt"
	"strings"

	"github.com/100xA/deviceagent/tools"
)

// produceTextPrefixes route a clause to the generic text-generation rule.
var produceTextPrefixes = []string{"give me", "list", "write", "summarize", "explain"}

// noteKeywords route a clause to the save/share-to-notes rule. Checked
// before the generic produce_text prefixes so a note request is never
// misrouted to a bare generation step.
var noteKeywords = []string{"note", "notizen", "notes app", "write into notes"}

// locationKeywords route a clause to the device-location rule.
var locationKeywords = []string{"where am i", "where i am", "my location", "coordinates"}

// synthesize maps each clause to zero or more steps using the fixed rule
// set, appending to the builder in generation order. Clauses matching no
// rule are returned, in order, for model backfill.
func synthesize(clauses []string, b *Builder) (unmatched []string) {
	for _, raw := range clauses {
		clause := strings.TrimSpace(raw)
		lower := strings.ToLower(clause)
		produced := false

		// search_web
		if strings.HasPrefix(lower, "search for ") || strings.HasPrefix(lower, "search ") {
			term := strings.TrimPrefix(lower, "search for ")
			term = strings.TrimPrefix(term, "search ")
			term = strings.TrimSpace(term)
			if term != "" {
				b.Append(Step{
					ID:          NewStepID(),
					ToolName:    "search_web",
					Parameters:  tools.Params{"query": tools.String(term)},
					Description: "Web search for: " + term,
				})
				produced = true
			}
		}

		// get_location
		if containsAnyOf(lower, locationKeywords) {
			b.Append(Step{
				ID:          NewStepID(),
				ToolName:    "get_location",
				Parameters:  tools.Params{},
				Description: "Get current location",
			})
			produced = true
		}

		// share to notes, either directly (quoted literal) or via a
		// chained generation step
		switch {
		case containsAnyOf(lower, noteKeywords):
			if quoted, ok := extractQuoted(clause); ok && strings.TrimSpace(quoted) != "" {
				b.Append(Step{
					ID:          NewStepID(),
					ToolName:    "share_content",
					Parameters:  tools.Params{"text": tools.String(quoted)},
					Description: "Share provided text via share sheet",
				})
			} else {
				genID := NewStepID()
				b.Append(Step{
					ID:          genID,
					ToolName:    "produce_text",
					Parameters:  tools.Params{"prompt": tools.String("Write a short note summarizing: " + ensureSentence(clause))},
					Description: "Generate note content",
				})
				b.Append(Step{
					ID:          NewStepID(),
					ToolName:    "share_content",
					Parameters:  tools.Params{"text": tools.String(fmt.Sprintf("${%s.artifacts.text}", genID))},
					DependsOn:   []string{genID},
					Description: "Open share sheet to save to notes",
				})
			}
			produced = true

		case hasAnyPrefix(lower, produceTextPrefixes):
			prompt := ensureSentence(clause)
			b.Append(Step{
				ID:          NewStepID(),
				ToolName:    "produce_text",
				Parameters:  tools.Params{"prompt": tools.String(prompt)},
				Description: "Generate text: " + prompt,
			})
			produced = true
		}

		if !produced {
			unmatched = append(unmatched, clause)
		}
	}
	return unmatched
}

// extractQuoted returns the first double-quoted substring of text.
func extractQuoted(text string) (string, bool) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return text[start+1 : start+1+end], true
}

// ensureSentence trims text and appends a period if missing.
func ensureSentence(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasSuffix(t, ".") {
		return t
	}
	return t + "."
}

func containsAnyOf(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
