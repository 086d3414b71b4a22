package features

import "github.com/kbukum/voicescreen/validation"

const defaultVoicingFloor = 0.1

// Config tunes the sub-extractors. Zero values take defaults.
type Config struct {
	// PitchFloor and PitchCeiling bound F0 search in Hz.
	PitchFloor   float64 `yaml:"pitch_floor" mapstructure:"pitch_floor" validate:"gt=0"`
	PitchCeiling float64 `yaml:"pitch_ceiling" mapstructure:"pitch_ceiling" validate:"gtfield=PitchFloor"`
	// YINThreshold is the CMNDF dip threshold for a voiced frame.
	YINThreshold float64 `yaml:"yin_threshold" mapstructure:"yin_threshold" validate:"gt=0,lt=1"`
	// VoicingFloor is the fraction of the recording's peak amplitude a frame
	// must reach to be pitch-tracked. 0 tracks every frame.
	VoicingFloor *float64 `yaml:"voicing_floor" mapstructure:"voicing_floor" validate:"omitempty,gte=0,lt=1"`
	// DFAMinSamples and DFAMaxSamples bound the DFA input length.
	DFAMinSamples int `yaml:"dfa_min_samples" mapstructure:"dfa_min_samples" validate:"gte=0"`
	DFAMaxSamples int `yaml:"dfa_max_samples" mapstructure:"dfa_max_samples" validate:"gtfield=DFAMinSamples"`
}

// ApplyDefaults sets defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.PitchFloor == 0 {
		c.PitchFloor = 75
	}
	if c.PitchCeiling == 0 {
		c.PitchCeiling = 500
	}
	if c.YINThreshold == 0 {
		c.YINThreshold = 0.1
	}
	if c.VoicingFloor == nil {
		floor := defaultVoicingFloor
		c.VoicingFloor = &floor
	}
	if c.DFAMinSamples == 0 {
		c.DFAMinSamples = 100
	}
	if c.DFAMaxSamples == 0 {
		c.DFAMaxSamples = 1000
	}
}

func (c Config) voicingFloor() float64 {
	if c.VoicingFloor == nil {
		return defaultVoicingFloor
	}
	return *c.VoicingFloor
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
