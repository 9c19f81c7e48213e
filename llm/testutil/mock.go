// Package testutil provides mock inference implementations for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/100xA/deviceagent/llm"
	"github.com/100xA/deviceagent/tools"
)

// MockInference is a thread-safe scripted inference capability. Each
// operation returns the configured value, or a zero result when nothing
// is configured. An optional Delay makes every call block (honoring
// context cancellation) so tests can exercise timeout races.
type MockInference struct {
	mu sync.Mutex

	// Delay is applied before every call returns.
	Delay time.Duration

	// GenerateReply is returned by GenerateText.
	GenerateReply string
	// GenerateErr takes precedence over GenerateReply.
	GenerateErr error

	// Selection is returned by ProposeToolCall.
	Selection *llm.ToolSelection
	// SelectionErr takes precedence over Selection.
	SelectionErr error

	// PlanSteps is returned by ProposePlan.
	PlanSteps []llm.ProposedStep
	// PlanErr takes precedence over PlanSteps.
	PlanErr error

	generateCalls int
	selectCalls   int
	planCalls     int
}

func (m *MockInference) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GenerateText returns the scripted reply.
func (m *MockInference) GenerateText(ctx context.Context, _ string, _ int) (string, error) {
	m.mu.Lock()
	m.generateCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	return m.GenerateReply, nil
}

// ProposeToolCall returns the scripted selection.
func (m *MockInference) ProposeToolCall(ctx context.Context, _ string, _ *tools.Registry) (*llm.ToolSelection, error) {
	m.mu.Lock()
	m.selectCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.SelectionErr != nil {
		return nil, m.SelectionErr
	}
	return m.Selection, nil
}

// ProposePlan returns the scripted plan steps.
func (m *MockInference) ProposePlan(ctx context.Context, _ string, _ *tools.Registry, _ int) ([]llm.ProposedStep, error) {
	m.mu.Lock()
	m.planCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.PlanErr != nil {
		return nil, m.PlanErr
	}
	return m.PlanSteps, nil
}

// GenerateCalls returns how many times GenerateText was invoked.
func (m *MockInference) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// SelectCalls returns how many times ProposeToolCall was invoked.
func (m *MockInference) SelectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectCalls
}

// PlanCalls returns how many times ProposePlan was invoked.
func (m *MockInference) PlanCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.planCalls
}

// Calls returns the total number of inference invocations.
func (m *MockInference) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls + m.selectCalls + m.planCalls
}
