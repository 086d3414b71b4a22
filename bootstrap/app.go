package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/voicescreen/component"
	"github.com/kbukum/voicescreen/logger"
)

// App runs registered components with a uniform lifecycle. C is the
// application config type; any struct embedding config.ServiceConfig
// satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(store)
//	app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	hooks           [phaseCount][]Hook
}

// NewApp applies defaults, validates cfg and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	s := newSettings(opts)

	if s.logger == nil {
		logger.Init(&base.Logging, base.Name)
		s.logger = logger.GetGlobalLogger()
	}
	summary := NewSummary(base.Name, base.Version)
	summary.out = s.summary

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          s.logger,
		Summary:         summary,
		gracefulTimeout: s.grace,
	}, nil
}

// RegisterComponent adds a component. Register dependencies first.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck fails when any component reports something other than healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var issues []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		issue := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			issue += " (" + h.Message + ")"
		}
		issues = append(issues, issue)
	}
	if len(issues) > 0 {
		return errors.New("components not healthy: " + strings.Join(issues, ", "))
	}
	return nil
}

// Run starts everything and blocks until SIGINT/SIGTERM or ctx is done,
// then shuts down within the graceful timeout.
func (a *App[C]) Run(ctx context.Context) error {
	return a.lifecycle(ctx, func(ctx context.Context) error {
		a.Logger.Info("application ready, waiting for shutdown signal")
		<-ctx.Done()
		a.Logger.Info("shutdown requested", logger.Fields("cause", context.Cause(ctx).Error()))
		return nil
	})
}

// RunTask runs a finite task between startup and shutdown. The task context
// is canceled on SIGINT/SIGTERM.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	return a.lifecycle(ctx, task)
}

func (a *App[C]) lifecycle(ctx context.Context, body func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	bodyErr := body(sigCtx)
	cancel()

	if err := a.shutdown(); err != nil && bodyErr == nil {
		return err
	}
	return bodyErr
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	if err := a.fire(ctx, phaseStart); err != nil {
		a.abort()
		return err
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := a.fire(ctx, phaseReady); err != nil {
		a.abort()
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("stop after failed startup", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (a *App[C]) shutdown() error {
	a.Logger.Info("shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	for _, h := range a.hooks[phaseStop] {
		if err := h(ctx); err != nil {
			a.Logger.Error("onStop hook failed", logger.Fields(logger.FieldError, err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("components stopped with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	a.Logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
