package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/100xA/deviceagent/confirm"
	"github.com/100xA/deviceagent/intent"
	"github.com/100xA/deviceagent/llm"
	"github.com/100xA/deviceagent/memory"
	"github.com/100xA/deviceagent/metrics"
	"github.com/100xA/deviceagent/planner"
	"github.com/100xA/deviceagent/tools"
)

// ErrBusy is returned when ProcessInput is called while a previous
// request is still running.
var ErrBusy = errors.New("agent: request already in flight")

// Inference is the model surface the runtime needs. llm.Client
// implements it.
type Inference interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	ProposeToolCall(ctx context.Context, input string, reg *tools.Registry) (*llm.ToolSelection, error)
}

// PlanSource produces a plan for a request, or nil when no plan applies.
type PlanSource interface {
	Plan(ctx context.Context, input string) *planner.Plan
}

const defaultToolSelectTimeout = 2 * time.Second

// Runtime drives one conversation. Safe for concurrent callers, but
// only one ProcessInput runs at a time; concurrent calls get ErrBusy.
type Runtime struct {
	planner    PlanSource
	inference  Inference
	executor   tools.Executor
	registry   *tools.Registry
	confirmer  confirm.Confirmer
	memory     *memory.Memory
	logger     *slog.Logger

	toolSelectTimeout time.Duration

	mu        sync.Mutex
	busy      bool
	state     State
	onMessage func(memory.Message)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger.With("category", "runtime") }
}

// WithToolSelectTimeout bounds the model tool-selection call on the
// single-tool fallback path.
func WithToolSelectTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.toolSelectTimeout = d
		}
	}
}

// WithMessageCallback invokes fn for every message the runtime appends
// to memory. Used by the CLI to stream replies.
func WithMessageCallback(fn func(memory.Message)) Option {
	return func(r *Runtime) { r.onMessage = fn }
}

// New creates a Runtime. inference may be nil; model paths then degrade
// to heuristics.
func New(
	plannerSrc PlanSource,
	inference Inference,
	executor tools.Executor,
	registry *tools.Registry,
	confirmer confirm.Confirmer,
	mem *memory.Memory,
	opts ...Option,
) *Runtime {
	r := &Runtime{
		planner:           plannerSrc,
		inference:         inference,
		executor:          executor,
		registry:          registry,
		confirmer:         confirmer,
		memory:            mem,
		logger:            slog.Default().With("category", "runtime"),
		toolSelectTimeout: defaultToolSelectTimeout,
		state:             StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle phase.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Memory returns the conversation transcript.
func (r *Runtime) Memory() *memory.Memory {
	return r.memory
}

func (r *Runtime) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Runtime) append(role memory.Role, content string) {
	r.memory.Append(role, content)
	if r.onMessage != nil {
		msgs := r.memory.Messages()
		r.onMessage(msgs[len(msgs)-1])
	}
}

// ProcessInput runs one request end to end. The user text and every
// assistant reply, tool call, and tool result are appended to memory.
// Confirmation denials are normal completions, not errors.
func (r *Runtime) ProcessInput(ctx context.Context, text string) error {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return ErrBusy
	}
	r.busy = true
	r.state = StateProcessing
	r.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
		r.mu.Lock()
		r.busy = false
		r.state = StateIdle
		r.mu.Unlock()
	}()

	r.append(memory.RoleUser, text)

	result := intent.Classify(text)
	metrics.RequestsTotal.WithLabelValues(string(result.Type)).Inc()
	r.logger.Info("Received input",
		"text", text,
		"intent", string(result.Type),
		"confidence", result.Confidence,
		"why", result.Rationale)

	switch result.Type {
	case intent.TypeNeedsClarification:
		r.setState(StateAwaitingClarify)
		r.append(memory.RoleAssistant, "Can you make the question more precise")
		return nil
	case intent.TypeQuestion, intent.TypeConversation:
		return r.handleConversation(ctx, text)
	case intent.TypeChatPlusTool:
		if r.inference != nil {
			reply, err := r.inference.GenerateText(ctx, text, 1024)
			if err != nil {
				r.logger.Debug("Chat reply failed, continuing with tool path", "error", err)
				metrics.ModelDegradationsTotal.WithLabelValues("chat").Inc()
			} else {
				r.append(memory.RoleAssistant, reply)
			}
		}
		return r.handleToolUse(ctx, text)
	case intent.TypeToolUse:
		r.logger.Info("Handling tool use")
		return r.handleToolUse(ctx, text)
	default:
		r.append(memory.RoleAssistant, "I'm not sure how to help with that yet.")
		return nil
	}
}

func (r *Runtime) handleConversation(ctx context.Context, text string) error {
	if r.inference == nil {
		r.append(memory.RoleAssistant, "I can't answer without the local model.")
		return nil
	}
	reply, err := r.inference.GenerateText(ctx, text, 0)
	if err != nil {
		metrics.ModelDegradationsTotal.WithLabelValues("chat").Inc()
		r.logger.Warn("Conversation reply failed", "error", err)
		r.append(memory.RoleAssistant, "I couldn't produce a reply. Try again.")
		return nil
	}
	r.append(memory.RoleAssistant, reply)
	return nil
}

// handleToolUse prefers a multi-step plan, then model tool selection,
// then keyword heuristics.
func (r *Runtime) handleToolUse(ctx context.Context, text string) error {
	r.setState(StateExecuting)

	if plan := r.planner.Plan(ctx, text); plan != nil {
		return r.executePlan(ctx, plan)
	}

	if r.inference != nil {
		selCtx, cancel := context.WithTimeout(ctx, r.toolSelectTimeout)
		selection, err := r.inference.ProposeToolCall(selCtx, text, r.registry)
		cancel()
		if err != nil {
			metrics.ModelDegradationsTotal.WithLabelValues("tool_selection").Inc()
			r.logger.Debug("Model tool selection unavailable", "error", err)
		} else if selection != nil {
			return r.executeSelected(ctx, selection)
		} else {
			r.logger.Debug("Model did not select a tool")
		}
	}

	return r.runHeuristics(ctx, text)
}

func (r *Runtime) executeSelected(ctx context.Context, sel *llm.ToolSelection) error {
	r.logger.Info("Model selected tool", "name", sel.Name, "confidence", sel.Confidence)

	if confirm.IsRisky(sel.Name) {
		ok, err := r.confirmer.Request(ctx, confirm.KindTool, "Use tool "+sel.Name+"?")
		if err != nil {
			return err
		}
		if !ok {
			r.append(memory.RoleAssistant, "Canceled.")
			return nil
		}
	}

	if def := r.registry.Lookup(sel.Name); def != nil {
		validation := tools.Validate(*def, sel.Parameters)
		if !validation.Valid {
			r.logger.Warn("Parameter validation failed", "errors", validation.Errors)
			r.setState(StateRepairingParameters)
			r.append(memory.RoleAssistant, "Parameters invalid.")
			return nil
		}
	}

	call := tools.Call{ID: planner.NewStepID(), Name: sel.Name, Parameters: sel.Parameters}
	r.append(memory.RoleToolCall, call.Name)
	res := r.executor.Execute(ctx, call)
	r.recordStepOutcome(res)
	r.append(memory.RoleToolResult, res.Result)
	return nil
}

func (r *Runtime) recordStepOutcome(res tools.Result) {
	if res.Success {
		metrics.StepsTotal.WithLabelValues(metrics.StepExecuted).Inc()
	} else {
		metrics.StepsTotal.WithLabelValues(metrics.StepFailed).Inc()
	}
}
