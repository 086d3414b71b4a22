package main

import (
	"fmt"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/classifier"
	"github.com/kbukum/voicescreen/config"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/observability"
	"github.com/kbukum/voicescreen/screening"
	"github.com/kbukum/voicescreen/server"
)

const serviceName = "voicescreen"

// AppConfig is the full voicescreen configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Audio         audio.Config           `yaml:"audio" mapstructure:"audio"`
	Transcoder    audio.TranscoderConfig `yaml:"transcoder" mapstructure:"transcoder"`
	Features      features.Config        `yaml:"features" mapstructure:"features"`
	Model         classifier.Config      `yaml:"model" mapstructure:"model"`
	Screening     screening.Config       `yaml:"screening" mapstructure:"screening"`
	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Transcoder.ApplyDefaults()
	c.Features.ApplyDefaults()
	c.Model.ApplyDefaults()
	c.Screening.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []struct {
		name string
		fn   func() error
	}{
		{"audio", c.Audio.Validate},
		{"transcoder", c.Transcoder.Validate},
		{"features", c.Features.Validate},
		{"model", c.Model.Validate},
		{"screening", c.Screening.Validate},
		{"server", c.Server.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("config.%s: %w", chk.name, err)
		}
	}
	return nil
}

func loadConfig(path string) (*AppConfig, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
