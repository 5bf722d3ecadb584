package config

// ProviderConfig configures one AI provider endpoint for the router (C3).
type ProviderConfig struct {
	Name        string `yaml:"name"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	Timeout     string `yaml:"timeout"`
	Temperature string `yaml:"temperature,omitempty"`
}

// AutonomyConfig carries the default autonomy posture; the live,
// mutable policy document (consent flags, allow/block lists) lives in
// internal/policy.PrivacyPolicy and is persisted separately so it can be
// hot-reloaded without restarting the process.
type AutonomyConfig struct {
	DefaultLevel  string `yaml:"default_level"`
	WorkspaceOnly bool   `yaml:"workspace_only"`
}

// MCPServerConfig configures the MCP browser bridge's TCP listener (C9).
type MCPServerConfig struct {
	Port           int  `yaml:"port"`
	RequirePairing bool `yaml:"require_pairing"`
	AllowPublic    bool `yaml:"allow_public"`
	HeartbeatSecs  int  `yaml:"heartbeat_secs"`
	InactivitySecs int  `yaml:"inactivity_secs"`
	MaxFrameBytes  int  `yaml:"max_frame_bytes"`
	MaxConnections int  `yaml:"max_connections"`
}

// StatusAPIConfig configures the CLI-facing status/control HTTP+WS server.
type StatusAPIConfig struct {
	Port         int    `yaml:"port"`
	AllowOrigins string `yaml:"allow_origins"`
}

// MonitorConfig configures the adaptive monitor's cadence table (C10).
type MonitorConfig struct {
	ActiveIntervalSecs   int `yaml:"active_interval_secs"`
	ModerateIntervalSecs int `yaml:"moderate_interval_secs"`
	LowIntervalSecs      int `yaml:"low_interval_secs"`
	IdleIntervalSecs     int `yaml:"idle_interval_secs"`
	ContextCacheSecs     int `yaml:"context_cache_secs"`
	MaxBackoffSecs       int `yaml:"max_backoff_secs"`
}
