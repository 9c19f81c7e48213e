package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Provider != "ollama" {
		t.Errorf("expected default provider ollama, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("expected default endpoint http://localhost:11434/v1, got %s", cfg.Model.Endpoint)
	}
	if cfg.Model.Temperature != 0.2 {
		t.Errorf("expected default temperature 0.2, got %f", cfg.Model.Temperature)
	}
	if cfg.Planner.BackfillTimeout != 5*time.Second {
		t.Errorf("expected default backfill timeout 5s, got %v", cfg.Planner.BackfillTimeout)
	}
	if cfg.Agent.MemoryCapacity != 200 {
		t.Errorf("expected default memory capacity 200, got %d", cfg.Agent.MemoryCapacity)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected NATS sink disabled by default, got %s", cfg.NATS.URL)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing model provider",
			modify:  func(c *Config) { c.Model.Provider = "" },
			wantErr: true,
		},
		{
			name:    "missing model name",
			modify:  func(c *Config) { c.Model.Name = "" },
			wantErr: true,
		},
		{
			name:    "temperature too low",
			modify:  func(c *Config) { c.Model.Temperature = -0.1 },
			wantErr: true,
		},
		{
			name:    "temperature too high",
			modify:  func(c *Config) { c.Model.Temperature = 1.1 },
			wantErr: true,
		},
		{
			name:    "negative proposed steps",
			modify:  func(c *Config) { c.Planner.MaxProposedSteps = -1 },
			wantErr: true,
		},
		{
			name:    "zero memory capacity",
			modify:  func(c *Config) { c.Agent.MemoryCapacity = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
model:
  provider: "openai"
  name: "test-model"
  endpoint: "http://test:1234/v1"
  temperature: 0.5
  timeout: 10m
planner:
  backfill_timeout: 3s
  max_proposed_steps: 4
location:
  latitude: 48.1
  longitude: 11.5
  accuracy_m: 30
nats:
  url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Model.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Name != "test-model" {
		t.Errorf("expected model test-model, got %s", cfg.Model.Name)
	}
	if cfg.Model.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %f", cfg.Model.Temperature)
	}
	if cfg.Model.Timeout != 10*time.Minute {
		t.Errorf("expected timeout 10m, got %v", cfg.Model.Timeout)
	}
	if cfg.Planner.BackfillTimeout != 3*time.Second {
		t.Errorf("expected backfill timeout 3s, got %v", cfg.Planner.BackfillTimeout)
	}
	if cfg.Planner.MaxProposedSteps != 4 {
		t.Errorf("expected 4 max proposed steps, got %d", cfg.Planner.MaxProposedSteps)
	}
	if cfg.Location.Latitude != 48.1 {
		t.Errorf("expected latitude 48.1, got %f", cfg.Location.Latitude)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	// Unset fields keep their defaults.
	if cfg.Agent.MemoryCapacity != 200 {
		t.Errorf("expected memory capacity to remain default, got %d", cfg.Agent.MemoryCapacity)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Model: ModelConfig{
			Name: "override-model",
		},
		Agent: AgentConfig{
			MemoryCapacity: 50,
		},
	}

	base.Merge(override)

	if base.Model.Name != "override-model" {
		t.Errorf("expected model override-model, got %s", base.Model.Name)
	}
	// Endpoint should remain from base since override didn't set it
	if base.Model.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("expected endpoint to remain default, got %s", base.Model.Endpoint)
	}
	if base.Agent.MemoryCapacity != 50 {
		t.Errorf("expected memory capacity 50, got %d", base.Agent.MemoryCapacity)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Name = "saved-model"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Model.Name != "saved-model" {
		t.Errorf("expected model saved-model, got %s", loaded.Model.Name)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("DEVICEAGENT_MODEL_NAME", "env-model")
	t.Setenv("DEVICEAGENT_MODEL_TEMPERATURE", "0.7")
	t.Setenv("DEVICEAGENT_NATS_URL", "nats://env:4222")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.Model.Name != "env-model" {
		t.Errorf("expected model env-model, got %s", cfg.Model.Name)
	}
	if cfg.Model.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %f", cfg.Model.Temperature)
	}
	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("expected NATS URL nats://env:4222, got %s", cfg.NATS.URL)
	}
}
