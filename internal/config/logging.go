package config

// LoggingConfig configures the categorized file logger (internal/logging).
// Persisted separately as logging_settings.json so toggling debug mode
// doesn't require rewriting the whole config file.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`
	Format     string          `yaml:"format" json:"format,omitempty"`
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"`
}

// IsCategoryEnabled returns whether logging is enabled for a category.
func (c LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}
