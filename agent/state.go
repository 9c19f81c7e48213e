// Package agent coordinates the full request cycle: intent
// classification, planning, confirmation gating, and tool execution.
// One request is in flight at a time.
package agent

// State is the runtime's observable lifecycle phase.
type State string

const (
	StateIdle                State = "idle"
	StateProcessing          State = "processing"
	StateExecuting           State = "executing"
	StateAwaitingClarify     State = "awaiting_clarification"
	StateRepairingParameters State = "repairing_parameters"
)
