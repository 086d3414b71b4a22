package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/voicescreen/logger"
)

// Option adjusts an App before its logger and summary are built.
type Option func(*settings)

type settings struct {
	logger  *logger.Logger
	grace   time.Duration
	summary io.Writer
}

func newSettings(opts []Option) settings {
	s := settings{grace: 15 * time.Second, summary: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger uses l instead of initializing the global logger from config.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout bounds shutdown. Non-positive values keep 15s.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithSummaryOutput redirects the startup summary; io.Discard silences it.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summary = w }
}
