package planner

import (
	"regexp"

	"github.com/100xA/deviceagent/tools"
)

// templatePattern matches artifact references of the form
// ${stepId.artifacts.key}.
var templatePattern = regexp.MustCompile(`\$\{([a-zA-Z0-9-]+)\.artifacts\.([a-zA-Z0-9_]+)\}`)

// ResolveTemplates substitutes artifact references in string parameters
// with outputs of completed steps. References whose step id or artifact
// key is absent resolve to the empty string: one dangling reference must
// not abort an otherwise-valid step (validation still catches resulting
// empty required strings). Non-string values pass through unchanged. The
// function is pure and never fails.
func ResolveTemplates(params tools.Params, outputs map[string]tools.Result) tools.Params {
	resolved := make(tools.Params, len(params))
	for name, val := range params {
		s, ok := val.AsString()
		if !ok {
			resolved[name] = val
			continue
		}
		resolved[name] = tools.String(resolveString(s, outputs))
	}
	return resolved
}

// resolveString replaces every reference in s, rightmost first so earlier
// byte offsets stay valid while the string is rewritten in place.
func resolveString(s string, outputs map[string]tools.Result) string {
	matches := templatePattern.FindAllStringSubmatchIndex(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		stepID := s[m[2]:m[3]]
		key := s[m[4]:m[5]]

		var replacement string
		if res, ok := outputs[stepID]; ok {
			replacement = res.Artifacts[key]
		}
		s = s[:m[0]] + replacement + s[m[1]:]
	}
	return s
}
