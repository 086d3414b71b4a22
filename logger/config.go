package logger

import (
	"fmt"
	"slices"
)

// Config is the logging section of the service config.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
	// File and the rotation settings apply when Output is "file".
	File       string `yaml:"file" mapstructure:"file"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`

	NoColor   bool `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults selects info-level console output on stderr, rotating at
// 100 MB with 3 backups kept for 28 days. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Level, "info")
	setDefault(&c.Format, "console")
	setDefault(&c.Output, "stderr")
	if c.Output == "file" {
		setDefault(&c.File, "voicescreen.log")
	}
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAge == 0 {
		c.MaxAge = 28
	}
	c.Timestamp = true
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	for _, f := range []struct {
		key, value string
		allowed    []string
	}{
		{"level", c.Level, []string{"trace", "debug", "info", "warn", "error"}},
		{"format", c.Format, []string{"json", "console", "pretty"}},
		{"output", c.Output, []string{"stdout", "stderr", "file"}},
	} {
		if !slices.Contains(f.allowed, f.value) {
			return fmt.Errorf("logging.%s must be one of %v (got %q)", f.key, f.allowed, f.value)
		}
	}
	return nil
}
