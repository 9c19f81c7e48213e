package agent

import (
	"context"
	"strings"

	"github.com/100xA/deviceagent/memory"
	"github.com/100xA/deviceagent/planner"
	"github.com/100xA/deviceagent/tools"
)

// runHeuristics is the last fallback on the tool-use path: keyword
// matching against a fixed set of commands. The first match executes.
func (r *Runtime) runHeuristics(ctx context.Context, text string) error {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "search "):
		query := strings.Replace(text, "search ", "", 1)
		r.logger.Debug("Heuristic match", "tool", "search_web")
		r.runHeuristicCall(ctx, "search_web", tools.Params{"query": tools.String(query)})
		r.append(memory.RoleAssistant, "Opened a web search.")
		return nil

	case strings.Contains(lower, "open "):
		idx := strings.Index(lower, "open ")
		tail := strings.TrimSpace(text[idx+len("open "):])
		r.logger.Debug("Heuristic match", "tool", "open_url")
		res := r.runHeuristicCall(ctx, "open_url", tools.Params{"urlString": tools.String(tail)})
		if res.Success {
			r.append(memory.RoleAssistant, "Opened the link.")
		} else {
			r.append(memory.RoleAssistant, "Invalid link.")
		}
		return nil

	case strings.Contains(lower, "where am i"), strings.Contains(lower, "my location"), strings.Contains(lower, "coordinates"):
		r.logger.Debug("Heuristic match", "tool", "get_location")
		res := r.runHeuristicCall(ctx, "get_location", tools.Params{})
		r.append(memory.RoleAssistant, res.Result)
		return nil

	case strings.Contains(lower, "whatsapp"):
		message := strings.TrimSpace(strings.ReplaceAll(text, "whatsapp", ""))
		r.logger.Debug("Heuristic match", "tool", "send_whatsapp")
		res := r.runHeuristicCall(ctx, "send_whatsapp", tools.Params{"message": tools.String(message)})
		if res.Success {
			r.append(memory.RoleAssistant, "Opened WhatsApp.")
		} else {
			r.append(memory.RoleAssistant, "Opened browser fallback.")
		}
		return nil

	case strings.Contains(lower, "text "), strings.Contains(lower, "sms"), strings.Contains(lower, "message "):
		recipient, message := parseMessageCommand(text)
		r.logger.Debug("Heuristic match", "tool", "send_message")
		res := r.runHeuristicCall(ctx, "send_message", tools.Params{
			"recipient": tools.String(recipient),
			"message":   tools.String(message),
		})
		if res.Success {
			r.append(memory.RoleAssistant, "Message composer opened.")
		} else {
			r.append(memory.RoleAssistant, "Messages composer unavailable.")
		}
		return nil
	}

	r.logger.Warn("No tool matched heuristics")
	r.append(memory.RoleAssistant, "No applicable tool found.")
	return nil
}

func (r *Runtime) runHeuristicCall(ctx context.Context, name string, params tools.Params) tools.Result {
	call := tools.Call{ID: planner.NewStepID(), Name: name, Parameters: params}
	r.append(memory.RoleToolCall, name)
	res := r.executor.Execute(ctx, call)
	r.recordStepOutcome(res)
	r.append(memory.RoleToolResult, res.Result)
	return res
}

// parseMessageCommand extracts recipient and body from phrasings like
// "message to Anna: running late", "text Anna running late", or bare
// body text when no recipient can be isolated.
func parseMessageCommand(text string) (recipient, message string) {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)

	for _, marker := range []string{"message to ", "text to ", "sms to "} {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		after := t[idx+len(marker):]
		if sep := strings.IndexAny(after, ":,-"); sep >= 0 {
			name := strings.TrimSpace(after[:sep])
			body := strings.TrimSpace(after[sep+1:])
			if name != "" && body != "" {
				return name, body
			}
		} else {
			parts := strings.SplitN(strings.TrimSpace(after), " ", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			}
			return "", strings.TrimSpace(after)
		}
	}

	for _, prefix := range []string{"text ", "sms ", "message "} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		words := strings.Fields(t)
		if len(words) >= 3 {
			return words[1], strings.Join(words[2:], " ")
		}
		if len(words) >= 2 {
			return "", strings.Join(words[1:], " ")
		}
	}

	return "", t
}
