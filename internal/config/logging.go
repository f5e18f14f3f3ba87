package config

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	DebugMode  bool            `yaml:"debug_mode"` // master toggle - false = no file logging
	Categories map[string]bool `yaml:"categories"` // per-category toggles
	JSONFormat bool            `yaml:"json_format"`
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false (production mode).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true // all enabled by default in debug mode
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true // enable by default if not specified
	}
	return enabled
}
