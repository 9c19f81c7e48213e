package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/100xA/deviceagent/tools"
)

const (
	defaultBackfillTimeout  = 5 * time.Second
	defaultMaxProposedSteps = 5
)

// Planner synthesizes multi-step plans from user requests.
type Planner struct {
	proposer         PlanProposer
	registry         *tools.Registry
	logger           *slog.Logger
	backfillTimeout  time.Duration
	maxProposedSteps int
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger.With("category", "planner")
	}
}

// WithBackfillTimeout bounds the model plan-proposal call.
func WithBackfillTimeout(d time.Duration) Option {
	return func(p *Planner) {
		if d > 0 {
			p.backfillTimeout = d
		}
	}
}

// WithMaxProposedSteps caps the step count requested from the model.
func WithMaxProposedSteps(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxProposedSteps = n
		}
	}
}

// New creates a Planner. proposer may be nil, in which case unmatched
// clauses are silently dropped (rule-based synthesis only).
func New(proposer PlanProposer, registry *tools.Registry, opts ...Option) *Planner {
	p := &Planner{
		proposer:         proposer,
		registry:         registry,
		logger:           slog.Default().With("category", "planner"),
		backfillTimeout:  defaultBackfillTimeout,
		maxProposedSteps: defaultMaxProposedSteps,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan synthesizes a plan for input. It returns nil when no steps survive
// sanitization; the caller then falls back to single-tool selection.
// Unmatched clauses the model cannot cover are dropped, not surfaced as
// errors.
func (p *Planner) Plan(ctx context.Context, input string) *Plan {
	b := NewBuilder()

	clauses := SplitClauses(input)
	unmatched := synthesize(clauses, b)

	if len(unmatched) > 0 && p.proposer != nil {
		p.backfill(ctx, unmatched, b)
	}

	steps := sanitize(b.Steps())
	if steps == nil {
		p.logger.Debug("Planning produced no steps", "clauses", len(clauses), "unmatched", len(unmatched))
		return nil
	}

	p.logger.Info("Created plan",
		"steps", len(steps),
		"clauses", len(clauses),
		"unmatched", len(unmatched))

	return &Plan{
		OriginalRequest:   input,
		EstimatedDuration: estimateDuration(len(steps)),
		Steps:             steps,
	}
}
