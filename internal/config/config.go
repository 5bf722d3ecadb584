// Package config loads and persists os-ghost-core's configuration: the YAML
// Config file (provider routing, automation, integrations, resource limits)
// plus the env var overrides from the external interface table.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/os-ghost/core/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the core's configuration, loaded from config.yaml and
// overridden by OS_GHOST_* environment variables.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Primary and secondary AI providers for the router (C3).
	Provider  ProviderConfig `yaml:"provider"`
	Secondary ProviderConfig `yaml:"secondary_provider"`

	// Default autonomy level and pairing/workspace posture.
	Autonomy AutonomyConfig `yaml:"autonomy"`

	// MCP browser bridge server (C9).
	MCPServer MCPServerConfig `yaml:"mcp_server"`

	// CLI-facing status/control HTTP+WS server.
	StatusAPI StatusAPIConfig `yaml:"status_api"`

	// Adaptive monitor cadence table (C10).
	Monitor MonitorConfig `yaml:"monitor"`

	// Resource and queue limits enforced system-wide.
	Limits ResourceLimits `yaml:"limits"`

	// Integration service endpoints plus the inert email/calendar settings
	// carried from original_source/ (no OAuth/ICS parsing; config only).
	Integrations IntegrationsConfig `yaml:"integrations"`

	// Logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "os-ghost",
		Version: "0.1.0",

		Provider: ProviderConfig{
			Name:    "anthropic",
			Model:   "claude-sonnet-4-5",
			BaseURL: "https://api.anthropic.com",
			Timeout: "60s",
		},
		Secondary: ProviderConfig{
			Name:    "ollama",
			Model:   "llama3.2",
			BaseURL: "http://localhost:11434",
			Timeout: "120s",
		},

		Autonomy: AutonomyConfig{
			DefaultLevel:  "supervised",
			WorkspaceOnly: true,
		},

		MCPServer: MCPServerConfig{
			Port:           9876,
			RequirePairing: true,
			AllowPublic:    false,
			HeartbeatSecs:  15,
			InactivitySecs: 30,
			MaxFrameBytes:  1 << 20,
			MaxConnections: 10,
		},

		StatusAPI: StatusAPIConfig{
			Port:         7842,
			AllowOrigins: "*",
		},

		Monitor: MonitorConfig{
			ActiveIntervalSecs:   10,
			ModerateIntervalSecs: 30,
			LowIntervalSecs:      60,
			IdleIntervalSecs:     300,
			ContextCacheSecs:     30,
			MaxBackoffSecs:       120,
		},

		Limits: ResourceLimits{
			MaxPendingActions:     500,
			LedgerBatchSize:       20,
			LedgerFlushIntervalMs: 500,
			MaxConcurrentAgents:   4,
			ProviderRateLimitRPM:  60,
		},

		Integrations: IntegrationsConfig{
			Servers: map[string]MCPServerIntegration{
				"browser": {Enabled: true, BaseURL: "http://localhost:7777", Timeout: "30s"},
			},
			Email:    EmailSettings{Enabled: false},
			Calendar: CalendarSettings{Enabled: false},
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// Dir returns the config root, <user-config-dir>/os-ghost.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, "os-ghost"), nil
}

// Load loads configuration from a YAML file, falling back to defaults if it
// does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: provider=%s model=%s", cfg.Provider.Name, cfg.Provider.Model)
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies OS_GHOST_* environment variables. An override
// only takes effect when the env var is non-empty; it never clobbers an
// explicit non-empty config value with an empty one.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OS_GHOST_API_KEY"); key != "" {
		c.Provider.APIKey = key
	}
	if provider := os.Getenv("OS_GHOST_PROVIDER"); provider != "" {
		c.Provider.Name = provider
	}
	if model := os.Getenv("OS_GHOST_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if temp := os.Getenv("OS_GHOST_TEMPERATURE"); temp != "" {
		c.Provider.Temperature = temp
	}
	if level := os.Getenv("OS_GHOST_AUTONOMY_LEVEL"); level != "" {
		c.Autonomy.DefaultLevel = level
	}
	if wo := os.Getenv("OS_GHOST_WORKSPACE_ONLY"); wo != "" {
		c.Autonomy.WorkspaceOnly = wo == "true" || wo == "1"
	}
	if hb := os.Getenv("OS_GHOST_HEARTBEAT"); hb != "" {
		if secs, err := time.ParseDuration(hb); err == nil {
			c.MCPServer.HeartbeatSecs = int(secs.Seconds())
		}
	}
	if port := os.Getenv("OS_GHOST_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			c.StatusAPI.Port = p
		}
	}
	if rp := os.Getenv("OS_GHOST_REQUIRE_PAIRING"); rp != "" {
		c.MCPServer.RequirePairing = rp == "true" || rp == "1"
	}
	if ap := os.Getenv("OS_GHOST_ALLOW_PUBLIC"); ap != "" {
		c.MCPServer.AllowPublic = ap == "true" || ap == "1"
	}
}

// ProviderTimeout returns the primary provider's call timeout.
func (c *Config) ProviderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// SecondaryProviderTimeout returns the secondary provider's call timeout.
func (c *Config) SecondaryProviderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Secondary.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// IsMCPServerEnabled reports whether a named integration server is enabled.
func (c *Config) IsMCPServerEnabled(serverID string) bool {
	return c.Integrations.IsServerEnabled(serverID)
}
