package planner

// maxPlanSteps caps a sanitized plan.
const maxPlanSteps = 8

// sanitize deduplicates steps by (toolName, description), keeping the
// first occurrence in order, and truncates to maxPlanSteps. Returns nil
// when nothing survives; an empty plan must never be released.
func sanitize(steps []Step) []Step {
	seen := make(map[string]struct{}, len(steps))
	unique := make([]Step, 0, len(steps))
	for _, s := range steps {
		key := s.ToolName + "|" + s.Description
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
	}

	if len(unique) > maxPlanSteps {
		unique = unique[:maxPlanSteps]
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}

// estimateDuration is a crude linear model of expected wall-clock seconds
// for a plan of n steps.
func estimateDuration(n int) int {
	if d := 3 * n; d > 4 {
		return d
	}
	return 4
}
