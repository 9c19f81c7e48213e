// Package planner turns one user request into an executable multi-step
// plan. Synthesis is hybrid: deterministic clause rules first, then a
// model-proposed backfill for clauses the rules did not recognize, merged
// under one monotonic priority counter and sanitized before release.
package planner

import (
	"github.com/google/uuid"

	"github.com/100xA/deviceagent/tools"
)

// Step is one atomic tool invocation inside a plan. Steps are immutable
// once appended to a plan, except for Priority, which the builder assigns
// to keep ordering monotonic across synthesis phases.
type Step struct {
	ID          string       `json:"id"`
	ToolName    string       `json:"toolName"`
	Parameters  tools.Params `json:"parameters"`
	DependsOn   []string     `json:"dependsOn,omitempty"`
	Priority    int          `json:"priority"`
	Description string       `json:"description"`
}

// Plan is an ordered collection of steps derived from one request.
// DependsOn entries may reference steps appearing later in the list;
// readiness is decided by completion, never by insertion order.
type Plan struct {
	OriginalRequest   string `json:"originalRequest"`
	EstimatedDuration int    `json:"estimatedDuration"`
	Steps             []Step `json:"steps"`
}

// Builder accumulates steps and owns the priority counter. Both synthesis
// phases draw from the same counter, which is what guarantees rule-based
// steps always sort before backfilled ones.
type Builder struct {
	steps []Step
	next  int
}

// NewBuilder returns an empty builder with priorities starting at 1.
func NewBuilder() *Builder {
	return &Builder{next: 1}
}

// Append adds a step, overwriting its Priority with the next counter
// value, and returns the stored step.
func (b *Builder) Append(step Step) Step {
	step.Priority = b.next
	b.next++
	b.steps = append(b.steps, step)
	return step
}

// Len returns the number of accumulated steps.
func (b *Builder) Len() int { return len(b.steps) }

// Steps returns the accumulated steps in insertion order.
func (b *Builder) Steps() []Step { return b.steps }

// NewStepID generates a unique step id.
func NewStepID() string {
	return uuid.New().String()
}
