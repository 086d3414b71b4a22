package screening

import "github.com/kbukum/voicescreen/validation"

// Config tunes the orchestrator.
type Config struct {
	// CacheSize bounds the digest to feature vector cache. Negative disables it.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"`
	// BatchWorkers bounds concurrent screenings in Batch.
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers" validate:"gte=0,lte=64"`
}

// ApplyDefaults sets defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.BatchWorkers == 0 {
		c.BatchWorkers = 4
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
