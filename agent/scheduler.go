package agent

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/100xA/deviceagent/confirm"
	"github.com/100xA/deviceagent/memory"
	"github.com/100xA/deviceagent/metrics"
	"github.com/100xA/deviceagent/planner"
	"github.com/100xA/deviceagent/tools"
)

// executePlan runs plan steps in dependency order. Steps whose
// dependencies are all completed form a wave, sorted by priority then
// id, and run sequentially. Steps with invalid parameters are marked
// executed without running so siblings and dependents stay live. When
// no step is ready and some remain, the plan halts; completed results
// are kept.
func (r *Runtime) executePlan(ctx context.Context, plan *planner.Plan) error {
	risky := riskyToolNames(plan.Steps)
	if len(risky) > 0 {
		desc := "Execute " + strconv.Itoa(len(plan.Steps)) + " steps including sensitive action(s): " + strings.Join(risky, ", ") + "?"
		ok, err := r.confirmer.Request(ctx, confirm.KindPlan, desc)
		if err != nil {
			return err
		}
		if !ok {
			r.append(memory.RoleAssistant, "Canceled.")
			return nil
		}
	}

	outputs := make(map[string]tools.Result)
	executed := make(map[string]bool)
	total := len(plan.Steps)

	for len(executed) < total {
		ready := readySteps(plan.Steps, executed)
		if len(ready) == 0 {
			metrics.PlanHaltsTotal.Inc()
			r.logger.Warn("No ready steps; possible cycle or missing deps")
			r.append(memory.RoleAssistant, "Plan halted due to cyclic or unsatisfied dependencies.")
			return nil
		}

		for _, step := range ready {
			r.logger.Debug("Execute step", "tool", step.ToolName, "desc", step.Description)

			resolved := planner.ResolveTemplates(step.Parameters, outputs)
			if def := r.registry.Lookup(step.ToolName); def != nil {
				validation := tools.Validate(*def, resolved)
				if !validation.Valid {
					r.logger.Warn("Step validation failed", "errors", strings.Join(validation.Errors, ", "))
					r.append(memory.RoleAssistant, "Step skipped due to invalid parameters.")
					metrics.StepsTotal.WithLabelValues(metrics.StepSkipped).Inc()
					executed[step.ID] = true
					continue
				}
			}

			call := tools.Call{ID: planner.NewStepID(), Name: step.ToolName, Parameters: resolved}
			r.append(memory.RoleToolCall, step.ToolName)
			res := r.executor.Execute(ctx, call)
			outputs[step.ID] = res
			r.recordStepOutcome(res)
			r.append(memory.RoleToolResult, res.Result)
			executed[step.ID] = true
		}
	}

	r.append(memory.RoleAssistant, "All steps completed.")
	return nil
}

// readySteps returns unexecuted steps whose dependencies are all
// executed, ordered by priority then id.
func readySteps(steps []planner.Step, executed map[string]bool) []planner.Step {
	var ready []planner.Step
	for _, s := range steps {
		if executed[s.ID] {
			continue
		}
		ok := true
		for _, dep := range s.DependsOn {
			if !executed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, s)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Priority == ready[j].Priority {
			return ready[i].ID < ready[j].ID
		}
		return ready[i].Priority < ready[j].Priority
	})
	return ready
}

func riskyToolNames(steps []planner.Step) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range steps {
		if confirm.IsRisky(s.ToolName) && !seen[s.ToolName] {
			seen[s.ToolName] = true
			names = append(names, s.ToolName)
		}
	}
	return names
}
