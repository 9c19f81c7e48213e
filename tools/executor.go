package tools

import "context"

// Call is one tool invocation request.
type Call struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Parameters Params `json:"parameters"`
}

// Result is the outcome of one tool invocation. A failed call is data, not
// an error: Success is false and Error carries a stable machine-readable
// code. Artifacts is the only state later plan steps can observe, via
// template references.
type Result struct {
	ToolCallID string            `json:"toolCallId"`
	Success    bool              `json:"success"`
	Result     string            `json:"result"`
	Error      string            `json:"error,omitempty"`
	Artifacts  map[string]string `json:"artifacts,omitempty"`
}

// Executor runs tool calls. Implementations are authoritative: the core
// never retries a failed Result and has no way to cancel a call already
// dispatched beyond the passed context.
type Executor interface {
	Execute(ctx context.Context, call Call) Result
}
