package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadFile reads scenarios from a YAML file of the form:
//
//	scenarios:
//	  - name: simple_search
//	    input: search for battery saving tips
//	    repetitions: 3
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s contains no scenarios", path)
	}
	for i, s := range f.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
		if s.Input == "" {
			return nil, fmt.Errorf("scenario %q has no input", s.Name)
		}
	}
	return f.Scenarios, nil
}
