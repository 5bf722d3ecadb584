package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "os-ghost" {
		t.Errorf("expected Name=os-ghost, got %s", cfg.Name)
	}
	if cfg.Provider.Name != "anthropic" {
		t.Errorf("expected Provider.Name=anthropic, got %s", cfg.Provider.Name)
	}
	if cfg.Limits.MaxPendingActions != 500 {
		t.Errorf("expected MaxPendingActions=500, got %d", cfg.Limits.MaxPendingActions)
	}
	if cfg.Autonomy.DefaultLevel != "supervised" {
		t.Errorf("expected DefaultLevel=supervised, got %s", cfg.Autonomy.DefaultLevel)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("OS_GHOST_API_KEY", "")
	t.Setenv("OS_GHOST_PROVIDER", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Provider.Name = "ollama"
	cfg.Provider.APIKey = "test-key"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider.Name != "ollama" {
		t.Errorf("expected Provider.Name=ollama, got %s", loaded.Provider.Name)
	}
	if loaded.Provider.APIKey != "test-key" {
		t.Errorf("expected APIKey=test-key, got %s", loaded.Provider.APIKey)
	}
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("OS_GHOST_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.Name != "anthropic" {
		t.Errorf("expected default provider anthropic, got %s", cfg.Provider.Name)
	}
}

func TestMCPServerEnabledHelpers(t *testing.T) {
	cfg := &Config{
		Integrations: IntegrationsConfig{
			Servers: map[string]MCPServerIntegration{
				"browser": {Enabled: true},
				"other":   {Enabled: false},
			},
		},
	}

	if !cfg.IsMCPServerEnabled("browser") {
		t.Error("expected browser integration enabled")
	}
	if cfg.IsMCPServerEnabled("other") {
		t.Error("expected other integration disabled")
	}
	if cfg.IsMCPServerEnabled("missing") {
		t.Error("expected missing integration disabled")
	}

	empty := &Config{}
	if empty.IsMCPServerEnabled("browser") {
		t.Error("expected disabled with nil servers map")
	}
}

func TestResourceLimits_Validate(t *testing.T) {
	valid := DefaultConfig().Limits
	if err := valid.Validate(); err != nil {
		t.Errorf("expected default limits to validate, got %v", err)
	}

	invalid := ResourceLimits{}
	if err := invalid.Validate(); err == nil {
		t.Error("expected zero-value limits to fail validation")
	}
}
