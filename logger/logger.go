package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a zerolog logger bound to the service it was built for.
// Derived loggers (WithComponent, WithContext) share the service tag.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger from cfg. An unknown level falls back to info. The
// level is also applied process-wide through zerolog's global level.
func New(cfg *Config, service string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.writer()
	if cfg.Format != "json" {
		out = consoleWriter(out, service, cfg.NoColor)
	}
	zc := zerolog.New(out).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	if service != "" && service != "default" {
		zc = zc.Str(FieldService, service)
	}
	return &Logger{zl: zc.Logger(), service: service}
}

// NewWithWriter writes JSON lines to w with no service tag.
func NewWithWriter(w io.Writer, service string) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger(), service: service}
}

// NewDefault is an info-level console logger on stderr.
func NewDefault(service string) *Logger {
	return New(&Config{Level: "info", Format: "console", Output: "stderr", Timestamp: true}, service)
}

func (c *Config) writer() io.Writer {
	switch c.Output {
	case "stdout":
		return os.Stdout
	case "file":
		return &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		}
	}
	return os.Stderr
}

// WithComponent tags every entry with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger(), service: l.service}
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.zl.Error(), msg, fields) }

// emit is a no-op for events below the active level, which zerolog
// signals with a nil event.
func emit(e *zerolog.Event, msg string, fields []map[string]any) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

var globalLogger *Logger

// Init replaces the global logger with one built from cfg after applying
// its defaults.
func Init(cfg *Config, service string) {
	cfg.ApplyDefaults()
	globalLogger = New(cfg, service)
}

func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the logger set by Init, or a default one.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent derives from the global logger.
func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }
