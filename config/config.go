// Package config provides configuration loading and management for the
// device agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete agent configuration
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Planner  PlannerConfig  `yaml:"planner"`
	Agent    AgentConfig    `yaml:"agent"`
	Location LocationConfig `yaml:"location"`
	NATS     NATSConfig     `yaml:"nats"`
}

// ModelConfig configures the LLM model settings
type ModelConfig struct {
	// Provider selects the inference backend ("ollama" or "openai")
	Provider string `yaml:"provider"`
	// Name is the model to use (e.g., "gemma2:2b")
	Name string `yaml:"name"`
	// Endpoint is the inference API endpoint (default: http://localhost:11434/v1)
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// PlannerConfig configures plan synthesis
type PlannerConfig struct {
	// BackfillTimeout bounds the model plan-proposal call
	BackfillTimeout time.Duration `yaml:"backfill_timeout"`
	// MaxProposedSteps caps the step count requested from the model
	MaxProposedSteps int `yaml:"max_proposed_steps"`
}

// AgentConfig configures the request runtime
type AgentConfig struct {
	// ToolSelectTimeout bounds model tool selection on the fallback path
	ToolSelectTimeout time.Duration `yaml:"tool_select_timeout"`
	// MemoryCapacity is the maximum retained transcript length
	MemoryCapacity int `yaml:"memory_capacity"`
}

// LocationConfig is the fixed position reported by get_location
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	AccuracyM int     `yaml:"accuracy_m"`
}

// NATSConfig configures the optional transcript sink
type NATSConfig struct {
	// URL is the NATS server URL (empty = sink disabled)
	URL string `yaml:"url"`
	// Subject is the publish subject for transcript messages
	Subject string `yaml:"subject"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Name:        "gemma2:2b",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     2 * time.Minute,
		},
		Planner: PlannerConfig{
			BackfillTimeout:  5 * time.Second,
			MaxProposedSteps: 5,
		},
		Agent: AgentConfig{
			ToolSelectTimeout: 2 * time.Second,
			MemoryCapacity:    200,
		},
		Location: LocationConfig{
			Latitude:  52.52,
			Longitude: 13.405,
			AccuracyM: 65,
		},
		NATS: NATSConfig{
			URL:     "",
			Subject: "deviceagent.transcript",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Planner.MaxProposedSteps < 0 {
		return fmt.Errorf("planner.max_proposed_steps must not be negative")
	}
	if c.Agent.MemoryCapacity <= 0 {
		return fmt.Errorf("agent.memory_capacity must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Planner
	if other.Planner.BackfillTimeout != 0 {
		c.Planner.BackfillTimeout = other.Planner.BackfillTimeout
	}
	if other.Planner.MaxProposedSteps != 0 {
		c.Planner.MaxProposedSteps = other.Planner.MaxProposedSteps
	}

	// Agent
	if other.Agent.ToolSelectTimeout != 0 {
		c.Agent.ToolSelectTimeout = other.Agent.ToolSelectTimeout
	}
	if other.Agent.MemoryCapacity != 0 {
		c.Agent.MemoryCapacity = other.Agent.MemoryCapacity
	}

	// Location
	if other.Location.Latitude != 0 || other.Location.Longitude != 0 {
		c.Location.Latitude = other.Location.Latitude
		c.Location.Longitude = other.Location.Longitude
	}
	if other.Location.AccuracyM != 0 {
		c.Location.AccuracyM = other.Location.AccuracyM
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
}
