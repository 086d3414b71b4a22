package audio

import (
	"context"

	"github.com/kbukum/voicescreen/component"
	"github.com/kbukum/voicescreen/logger"
)

var _ component.Component = (*TranscoderComponent)(nil)

// TranscoderComponent reports transcoder availability to the health registry.
type TranscoderComponent struct {
	ff  *FFmpeg
	log *logger.Logger
}

// NewTranscoderComponent wraps ff for registration.
func NewTranscoderComponent(ff *FFmpeg, log *logger.Logger) *TranscoderComponent {
	return &TranscoderComponent{ff: ff, log: log.WithComponent("transcoder")}
}

func (c *TranscoderComponent) Name() string { return "transcoder" }

// Start probes for the binary. A missing binary is logged, not fatal:
// /ready reports it and requests fail with an audio decode error.
func (c *TranscoderComponent) Start(ctx context.Context) error {
	if !c.ff.Available(ctx) {
		c.log.Warn("transcoder binary not found on PATH", logger.Fields("binary", c.ff.Binary()))
	}
	return nil
}

func (c *TranscoderComponent) Stop(context.Context) error { return nil }

func (c *TranscoderComponent) Health(ctx context.Context) component.Health {
	h := component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Details: map[string]string{"binary": c.ff.Binary(), "circuit": c.ff.Circuit()},
	}
	switch {
	case c.ff.Circuit() == "open":
		h.Status = component.StatusDegraded
		h.Message = "circuit open"
	case !c.ff.Available(ctx):
		h.Status = component.StatusUnhealthy
		h.Message = "binary not found"
	}
	return h
}
