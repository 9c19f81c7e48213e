package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/100xA/deviceagent/tools"
)

// proposalConfidenceFloor is the minimum confidence at which a model
// proposal (tool selection or plan) is accepted.
const proposalConfidenceFloor = 0.5

// ToolSelection is an accepted single-tool proposal with parameters
// already coerced to the tool's schema.
type ToolSelection struct {
	Name       string
	Parameters tools.Params
	Confidence float64
}

// ProposedStep is one step of a model-proposed plan. DependsOn holds
// 0-based indices into the proposed step list; the planner maps them to
// generated step ids during merge.
type ProposedStep struct {
	Name        string            `json:"name"`
	Parameters  map[string]string `json:"parameters"`
	DependsOn   []int             `json:"dependsOn"`
	Description string            `json:"description"`
}

// GenerateText produces free text for a prompt. maxTokens <= 0 leaves the
// generation length to the endpoint.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.Complete(ctx, Request{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

const toolSelectionSystemPrompt = `You are a tool selector. Choose the best tool and fill parameters.
Only output compact JSON: {"name":"...","parameters":{...},"confidence":0.0-1.0}
Use the given tool list and their parameter specs strictly.
If no tool applies, output {"name":"","parameters":{},"confidence":0.0}
Tools:
%s`

// toolCallProposal is the raw JSON shape the selector prompt requests.
type toolCallProposal struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
	Confidence float64           `json:"confidence"`
}

// ProposeToolCall asks the model to pick one tool for the input. It
// returns nil (with nil error) when the model declines, confidence is
// below the acceptance floor, the named tool is unknown, or a required
// parameter is missing. Callers fall back to heuristics in all of those
// cases.
func (c *Client) ProposeToolCall(ctx context.Context, input string, reg *tools.Registry) (*ToolSelection, error) {
	resp, err := c.Complete(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: fmt.Sprintf(toolSelectionSystemPrompt, reg.JSON())},
			{Role: "user", Content: "User input: " + input},
		},
		MaxTokens: 512,
	})
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(resp.Content)
	if raw == "" {
		return nil, nil
	}
	var proposal toolCallProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		c.logger.Debug("Tool proposal was not valid JSON", "error", err)
		return nil, nil
	}

	def := reg.Lookup(proposal.Name)
	if def == nil || proposal.Confidence < proposalConfidenceFloor {
		return nil, nil
	}

	params := make(tools.Params, len(def.Parameters))
	for _, spec := range def.Parameters {
		raw, present := proposal.Parameters[spec.Name]
		if !present {
			if !spec.Optional {
				return nil, nil
			}
			continue
		}
		params[spec.Name] = CoerceParam(spec.Type, raw)
	}

	return &ToolSelection{
		Name:       def.Name,
		Parameters: params,
		Confidence: proposal.Confidence,
	}, nil
}

const planSystemPrompt = `You are a planner for an on-device agent. Decompose the user's request into ATOMIC, independent intents, and create a minimal multi-step plan using ONLY the provided tools.

OUTPUT STRICT JSON with this shape:
{"steps":[{"name":"...","parameters":{"k":"v"},"dependsOn":[indices],"description":"..."}...],"confidence":0.0-1.0}

RULES:
- Decompose into separate steps for unrelated intents.
- NEVER include the full original input in any parameter. Scope parameters ONLY to their own intent.
- For "search_web": "query" MUST be only the topic keywords (2-6 words), not the whole sentence.
- For "produce_text": "prompt" MUST be a concise imperative instruction about its intent only.
- Use only tools listed in Tools; parameter keys MUST match the schema exactly.
- Keep steps <= %d.
- Use dependsOn indices (0-based) ONLY when a later step needs artifacts from earlier steps. Avoid artificial dependencies.
Tools:
%s`

// planProposal is the raw JSON shape the planner prompt requests.
type planProposal struct {
	Steps      []ProposedStep `json:"steps"`
	Confidence float64        `json:"confidence"`
}

// ProposePlan asks the model for a multi-step plan covering the input.
// Returns nil (with nil error) when the model declines, produces no
// steps, or confidence falls below the acceptance floor.
func (c *Client) ProposePlan(ctx context.Context, input string, reg *tools.Registry, maxSteps int) ([]ProposedStep, error) {
	resp, err := c.Complete(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: fmt.Sprintf(planSystemPrompt, maxSteps, reg.JSON())},
			{Role: "user", Content: "User request: " + input},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(resp.Content)
	if raw == "" {
		return nil, nil
	}
	var proposal planProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		c.logger.Debug("Plan proposal was not valid JSON", "error", err)
		return nil, nil
	}
	if proposal.Confidence < proposalConfidenceFloor || len(proposal.Steps) == 0 {
		return nil, nil
	}
	if len(proposal.Steps) > maxSteps {
		proposal.Steps = proposal.Steps[:maxSteps]
	}
	return proposal.Steps, nil
}

// CoerceParam converts a raw string parameter from a model proposal into
// the declared schema type. Unparseable ints coerce to 0 and phone values
// lose non-phone characters; validation catches what remains unusable.
func CoerceParam(t tools.ParamType, raw string) tools.Value {
	switch t {
	case tools.TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return tools.Int(0)
		}
		return tools.Int(n)
	case tools.TypePhone:
		var b strings.Builder
		for _, r := range raw {
			if r == '+' || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		return tools.String(b.String())
	default:
		return tools.String(raw)
	}
}
