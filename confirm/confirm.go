// Package confirm gates outward-facing actions behind an explicit user
// decision. A denial is a cancellation, not an error.
package confirm

import "context"

// Kind distinguishes what is being confirmed.
type Kind string

const (
	// KindPlan asks before executing a whole multi-step plan.
	KindPlan Kind = "plan"
	// KindTool asks before executing a single risky tool call.
	KindTool Kind = "tool"
)

// Confirmer decides whether an action may proceed. Implementations block
// until the user answers or ctx is done.
type Confirmer interface {
	Request(ctx context.Context, kind Kind, description string) (bool, error)
}

// Func adapts a function to the Confirmer interface.
type Func func(ctx context.Context, kind Kind, description string) (bool, error)

// Request implements Confirmer.
func (f Func) Request(ctx context.Context, kind Kind, description string) (bool, error) {
	return f(ctx, kind, description)
}

// Auto approves everything. Used by scenario runs and tests.
type Auto struct{}

// Request implements Confirmer.
func (Auto) Request(context.Context, Kind, string) (bool, error) {
	return true, nil
}

// riskyTools are tools with outward-facing side effects that always
// require confirmation regardless of tool metadata.
var riskyTools = map[string]struct{}{
	"send_message":  {},
	"send_whatsapp": {},
	"share_content": {},
}

// IsRisky reports whether toolName sends content outside the device.
func IsRisky(toolName string) bool {
	_, ok := riskyTools[toolName]
	return ok
}
