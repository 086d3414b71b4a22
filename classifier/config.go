package classifier

import (
	"time"

	"github.com/kbukum/voicescreen/validation"
)

// Config locates and interprets the model artifact.
type Config struct {
	// Path is the artifact file (.json or .msgpack).
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
	// Format overrides extension-based detection.
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json msgpack"`
	// PositiveClass names the class reported as Disorder.
	PositiveClass string `yaml:"positive_class" mapstructure:"positive_class"`
	// Watch reloads the model when the file changes.
	Watch bool `yaml:"watch" mapstructure:"watch"`
	// RetryInterval throttles lazy loads while the model is missing.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval" validate:"gte=0"`
}

// ApplyDefaults sets defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "models/voicescreen.json"
	}
	if c.PositiveClass == "" {
		c.PositiveClass = "1"
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 5 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
