// Package tools defines the tool registry, parameter schemas, and the
// execution contract the agent core uses to reach concrete tool
// implementations.
package tools

import (
	"encoding/json"
	"fmt"
)

// ParamType enumerates the declared parameter types a tool schema may use.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "int"
	TypeURL    ParamType = "url"
	TypePhone  ParamType = "phone"
)

// ParamSpec declares one parameter of a tool.
type ParamSpec struct {
	Name     string    `json:"name" yaml:"name"`
	Type     ParamType `json:"type" yaml:"type"`
	Optional bool      `json:"optional" yaml:"optional"`
}

// Definition describes a tool the agent can invoke.
type Definition struct {
	Name                 string      `json:"name" yaml:"name"`
	Description          string      `json:"description" yaml:"description"`
	Parameters           []ParamSpec `json:"parameters" yaml:"parameters"`
	RequiresConfirmation bool        `json:"requiresConfirmation" yaml:"requires_confirmation"`
}

// Registry is an immutable set of tool definitions, built once at process
// start and shared read-only by all components.
type Registry struct {
	defs   []Definition
	byName map[string]*Definition
}

// NewRegistry builds a registry from definitions. Names must be unique.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, len(defs)),
		byName: make(map[string]*Definition, len(defs)),
	}
	copy(r.defs, defs)
	for i := range r.defs {
		d := &r.defs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("tool %d has no name", i)
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		r.byName[d.Name] = d
	}
	return r, nil
}

// Lookup returns the definition for name, or nil if unknown.
func (r *Registry) Lookup(name string) *Definition {
	return r.byName[name]
}

// List returns all definitions in declaration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.defs) }

// JSON renders the registry as a JSON array for inclusion in model prompts.
func (r *Registry) JSON() string {
	data, err := json.Marshal(r.defs)
	if err != nil {
		return "[]"
	}
	return string(data)
}
