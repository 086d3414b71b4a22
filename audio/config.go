package audio

import (
	"time"

	"github.com/kbukum/voicescreen/validation"
)

// Config configures the normalizer.
type Config struct {
	// TempDir is the parent for per-request work directories. Empty uses os.TempDir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// MaxBytes caps accepted blob size. Zero disables the check.
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"`
}

// TranscoderConfig configures the external transcoder process.
type TranscoderConfig struct {
	Binary        string        `yaml:"binary" mapstructure:"binary" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	GracePeriod   time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gt=0"`
	// MaxWait is how long a request waits for a free transcoder slot.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
	// BreakerFailures is the number of consecutive infrastructure failures
	// (missing binary, timeout) that open the circuit.
	BreakerFailures int           `yaml:"breaker_failures" mapstructure:"breaker_failures" validate:"gt=0"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown" validate:"gt=0"`
}

// ApplyDefaults sets defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxBytes == 0 {
		c.MaxBytes = 25 << 20
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// ApplyDefaults sets defaults for unset fields.
func (c *TranscoderConfig) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = 2 * time.Second
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
	if c.MaxWait == 0 {
		c.MaxWait = 10 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *TranscoderConfig) Validate() error {
	return validation.Validate(c)
}
