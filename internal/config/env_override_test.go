package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Provider(t *testing.T) {
	t.Run("OS_GHOST_API_KEY sets the provider key", func(t *testing.T) {
		t.Setenv("OS_GHOST_API_KEY", "test-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "test-key", cfg.Provider.APIKey)
	})

	t.Run("OS_GHOST_PROVIDER overrides provider name", func(t *testing.T) {
		t.Setenv("OS_GHOST_PROVIDER", "ollama")

		cfg := &Config{Provider: ProviderConfig{Name: "anthropic"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "ollama", cfg.Provider.Name)
	})

	t.Run("empty env var does not clobber explicit config value", func(t *testing.T) {
		cfg := &Config{Provider: ProviderConfig{Name: "anthropic", APIKey: "from-file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "anthropic", cfg.Provider.Name)
		assert.Equal(t, "from-file", cfg.Provider.APIKey)
	})

	t.Run("OS_GHOST_MODEL overrides model", func(t *testing.T) {
		t.Setenv("OS_GHOST_MODEL", "claude-opus-4")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "claude-opus-4", cfg.Provider.Model)
	})
}

func TestEnvOverrides_Autonomy(t *testing.T) {
	t.Run("OS_GHOST_AUTONOMY_LEVEL overrides default level", func(t *testing.T) {
		t.Setenv("OS_GHOST_AUTONOMY_LEVEL", "autonomous")

		cfg := &Config{Autonomy: AutonomyConfig{DefaultLevel: "supervised"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "autonomous", cfg.Autonomy.DefaultLevel)
	})

	t.Run("OS_GHOST_WORKSPACE_ONLY parses boolean", func(t *testing.T) {
		t.Setenv("OS_GHOST_WORKSPACE_ONLY", "false")

		cfg := &Config{Autonomy: AutonomyConfig{WorkspaceOnly: true}}
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Autonomy.WorkspaceOnly)
	})
}

func TestEnvOverrides_MCPServer(t *testing.T) {
	t.Run("OS_GHOST_PORT overrides the status API port", func(t *testing.T) {
		t.Setenv("OS_GHOST_PORT", "9999")

		cfg := &Config{StatusAPI: StatusAPIConfig{Port: 7842}}
		cfg.applyEnvOverrides()

		assert.Equal(t, 9999, cfg.StatusAPI.Port)
	})

	t.Run("OS_GHOST_REQUIRE_PAIRING overrides pairing requirement", func(t *testing.T) {
		t.Setenv("OS_GHOST_REQUIRE_PAIRING", "false")

		cfg := &Config{MCPServer: MCPServerConfig{RequirePairing: true}}
		cfg.applyEnvOverrides()

		assert.False(t, cfg.MCPServer.RequirePairing)
	})

	t.Run("OS_GHOST_ALLOW_PUBLIC overrides public binding", func(t *testing.T) {
		t.Setenv("OS_GHOST_ALLOW_PUBLIC", "true")

		cfg := &Config{MCPServer: MCPServerConfig{AllowPublic: false}}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.MCPServer.AllowPublic)
	})

	t.Run("OS_GHOST_HEARTBEAT overrides heartbeat interval", func(t *testing.T) {
		t.Setenv("OS_GHOST_HEARTBEAT", "45s")

		cfg := &Config{MCPServer: MCPServerConfig{HeartbeatSecs: 15}}
		cfg.applyEnvOverrides()

		assert.Equal(t, 45, cfg.MCPServer.HeartbeatSecs)
	})

	t.Run("invalid OS_GHOST_PORT is ignored", func(t *testing.T) {
		t.Setenv("OS_GHOST_PORT", "not-a-number")

		cfg := &Config{StatusAPI: StatusAPIConfig{Port: 7842}}
		cfg.applyEnvOverrides()

		assert.Equal(t, 7842, cfg.StatusAPI.Port)
	})
}
