// Package intent classifies free-form user input into the coarse intent
// categories that drive request routing: direct answer, tool use, a hybrid
// of both, or a request for clarification.
package intent

import "strings"

// Type is an intent category.
type Type string

const (
	TypeQuestion           Type = "question"
	TypeToolUse            Type = "toolUse"
	TypeConversation       Type = "conversation"
	TypeChatPlusTool       Type = "chatPlusTool"
	TypeNeedsClarification Type = "needsClarification"
	TypeUnknown            Type = "unknown"
)

// Confidence thresholds for classification outcomes.
const (
	// LowConfidence is the floor below which a winning rule is downgraded
	// to needsClarification.
	LowConfidence = 0.55

	// HighConfidence marks results callers may act on without hedging.
	HighConfidence = 0.80
)

// Classification is the result of classifying one input.
type Classification struct {
	Type       Type
	Confidence float64
	Rationale  string
}

// conversationKeywords trigger the conversation rule anywhere in the input.
var conversationKeywords = []string{"explain", "help", "tell me"}

// toolKeywords trigger the tool-use rule anywhere in the input.
var toolKeywords = []string{
	"search ", "google ", "open ", "screenshot", "sms", "message ",
	"whatsapp", "where am i", "my location", "coordinates",
	"note", "notizen", "notes app", "write into notes", "schreibe ",
}

// hybridKeywords suggest chat combined with tool use.
var hybridKeywords = []string{"and then", "and afterwards", "then "}

// Classify scores text against a fixed set of independent keyword and
// shape rules and returns the best candidate. It is a pure function:
// deterministic, total, and free of side effects. Ties go to the rule
// declared first; a winner below LowConfidence is downgraded to
// needsClarification with the original rationale preserved.
func Classify(text string) Classification {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Classification{Type: TypeUnknown, Confidence: 0, Rationale: "Empty input"}
	}

	lower := strings.ToLower(trimmed)
	var candidates []Classification

	if strings.HasSuffix(lower, "?") {
		candidates = append(candidates, Classification{TypeQuestion, 0.75, "Ends with question mark"})
	}
	if containsAny(lower, conversationKeywords) {
		candidates = append(candidates, Classification{TypeConversation, 0.65, "Conversation keywords"})
	}
	if containsAny(lower, toolKeywords) {
		candidates = append(candidates, Classification{TypeToolUse, 0.70, "Tool keywords"})
	}
	if containsAny(lower, hybridKeywords) {
		candidates = append(candidates, Classification{TypeChatPlusTool, 0.65, "Hybrid phrasing"})
	}

	if len(candidates) == 0 {
		candidates = append(candidates, Classification{TypeConversation, 0.55, "Default to conversation"})
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	if best.Confidence < LowConfidence {
		return Classification{
			Type:       TypeNeedsClarification,
			Confidence: best.Confidence,
			Rationale:  "Low confidence: " + best.Rationale,
		}
	}
	return best
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
