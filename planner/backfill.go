package planner

import (
	"context"
	"strings"

	"github.com/100xA/deviceagent/llm"
	"github.com/100xA/deviceagent/metrics"
	"github.com/100xA/deviceagent/tools"
)

// PlanProposer is the model capability the backfill phase consumes.
// Implementations must honor context cancellation.
type PlanProposer interface {
	ProposePlan(ctx context.Context, input string, reg *tools.Registry, maxSteps int) ([]llm.ProposedStep, error)
}

// backfill submits unmatched clauses to the plan-proposal capability
// under the configured deadline and appends accepted steps to the
// builder, continuing its priority counter. Any failure (timeout,
// transport error, rejected proposal) degrades to no added steps.
func (p *Planner) backfill(ctx context.Context, unmatched []string, b *Builder) {
	ctx, cancel := context.WithTimeout(ctx, p.backfillTimeout)
	defer cancel()

	input := strings.Join(unmatched, ". ")
	proposed, err := p.proposer.ProposePlan(ctx, input, p.registry, p.maxProposedSteps)
	if err != nil {
		metrics.ModelDegradationsTotal.WithLabelValues("plan").Inc()
		p.logger.Debug("Plan backfill degraded", "error", err, "clauses", len(unmatched))
		return
	}
	if len(proposed) == 0 {
		p.logger.Debug("Plan backfill proposed no steps", "clauses", len(unmatched))
		return
	}

	// Proposed dependsOn entries are indices into the proposal; map them
	// to the generated ids. Indices out of range or pointing at steps we
	// rejected are dropped. Acceptance is decided up front so a dependency
	// on a step rejected later in the list cannot dangle.
	ids := make([]string, len(proposed))
	for i, ps := range proposed {
		if p.registry.Lookup(ps.Name) == nil {
			p.logger.Debug("Proposed step names unknown tool, dropping", "tool", ps.Name)
			continue
		}
		ids[i] = NewStepID()
	}

	for i, ps := range proposed {
		if ids[i] == "" {
			continue
		}
		def := p.registry.Lookup(ps.Name)

		params := make(tools.Params, len(ps.Parameters))
		for _, spec := range def.Parameters {
			if raw, ok := ps.Parameters[spec.Name]; ok {
				params[spec.Name] = llm.CoerceParam(spec.Type, raw)
			}
		}

		var deps []string
		for _, idx := range ps.DependsOn {
			if idx >= 0 && idx < len(ids) && ids[idx] != "" && idx != i {
				deps = append(deps, ids[idx])
			}
		}

		b.Append(Step{
			ID:          ids[i],
			ToolName:    ps.Name,
			Parameters:  params,
			DependsOn:   deps,
			Description: ps.Description,
		})
	}
}
