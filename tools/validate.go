package tools

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationResult reports schema validation of resolved parameters.
// Errors holds every violation found, not just the first.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks resolved parameters against the tool's declared schema.
// Parameters not declared in the schema are ignored.
//
// Type rules:
//   - string: a string value must be non-empty after trimming
//   - int:    the value must be an integer
//   - url:    a string value must parse under net/url's permissive grammar
//     (bare strings without a scheme generally parse as valid paths)
//   - phone:  the value must be a string containing at least one digit or
//     '+' after stripping other characters
func Validate(def Definition, params Params) ValidationResult {
	var errs []string

	for _, spec := range def.Parameters {
		val, present := params[spec.Name]
		if !present {
			if !spec.Optional {
				errs = append(errs, fmt.Sprintf("missing required parameter: %s", spec.Name))
			}
			continue
		}

		switch spec.Type {
		case TypeString:
			if s, ok := val.AsString(); ok && strings.TrimSpace(s) == "" {
				errs = append(errs, fmt.Sprintf("parameter %s must be a non-empty string", spec.Name))
			}
		case TypeInt:
			if _, ok := val.AsInt(); !ok {
				errs = append(errs, fmt.Sprintf("parameter %s must be an integer", spec.Name))
			}
		case TypeURL:
			if s, ok := val.AsString(); ok {
				if _, err := url.Parse(s); err != nil {
					errs = append(errs, fmt.Sprintf("parameter %s must be a valid URL string", spec.Name))
				}
			}
		case TypePhone:
			s, ok := val.AsString()
			if !ok || stripPhone(s) == "" {
				errs = append(errs, fmt.Sprintf("parameter %s must be a phone-like string", spec.Name))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// stripPhone keeps only digits and '+'.
func stripPhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
