package classifier

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kbukum/voicescreen/component"
	"github.com/kbukum/voicescreen/logger"
)

var _ component.Component = (*Store)(nil)

type handle struct {
	model    Model
	loadedAt time.Time
}

// Store holds the current model. Readers get an immutable Model through an
// atomic pointer; loads replace the pointer and never touch a loaded model.
type Store struct {
	cfg Config
	log *logger.Logger

	current atomic.Pointer[handle]

	mu          sync.Mutex
	lastAttempt time.Time
	lastErr     error

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewStore creates a store for cfg. Nothing is read until Start, Load or
// the first Model call.
func NewStore(cfg Config, log *logger.Logger) *Store {
	cfg.ApplyDefaults()
	return &Store{cfg: cfg, log: log.WithComponent("classifier")}
}

// PositiveClass returns the configured class name reported as Disorder.
func (s *Store) PositiveClass() string { return s.cfg.PositiveClass }

// Path returns the artifact location.
func (s *Store) Path() string { return s.cfg.Path }

// Loaded reports whether a model is available without attempting a load.
func (s *Store) Loaded() bool { return s.current.Load() != nil }

// Model returns the current model. While none is loaded it retries the
// artifact at most once per RetryInterval and returns the last load error.
func (s *Store) Model() (Model, error) {
	if h := s.current.Load(); h != nil {
		return h.model, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h := s.current.Load(); h != nil {
		return h.model, nil
	}
	if !s.lastAttempt.IsZero() && time.Since(s.lastAttempt) < s.cfg.RetryInterval {
		return nil, s.lastErr
	}
	return s.loadLocked()
}

// Load reads the artifact and swaps it in. On failure the previous model,
// if any, stays in place.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadLocked()
	return err
}

func (s *Store) loadLocked() (Model, error) {
	s.lastAttempt = time.Now()
	m, err := LoadFile(s.cfg.Path, s.cfg.Format)
	if err != nil {
		s.lastErr = err
		s.log.Warn("model load failed", logger.Fields("path", s.cfg.Path, logger.FieldError, err.Error()))
		return nil, err
	}
	s.lastErr = nil
	s.current.Store(&handle{model: m, loadedAt: time.Now()})
	s.log.Info("model loaded", logger.Fields("path", s.cfg.Path, "width", m.Width(), "classes", m.Classes()))
	return m, nil
}

func (s *Store) Name() string { return "model" }

// Start loads the artifact and, when configured, watches it for changes.
// A missing artifact is not fatal: classifications resolve to Unknown
// until it appears.
func (s *Store) Start(ctx context.Context) error {
	_ = s.Load()
	if !s.cfg.Watch {
		return nil
	}
	if err := s.watch(); err != nil {
		s.log.Warn("model watch disabled", logger.Fields(logger.FieldError, err.Error()))
	}
	return nil
}

// watch follows the artifact's directory so that atomic renames onto the
// path are seen as well as in-place writes.
func (s *Store) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.cfg.Path)); err != nil {
		w.Close()
		return err
	}
	s.watcher = w
	s.done = make(chan struct{})
	target := filepath.Clean(s.cfg.Path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				s.log.Debug("model file changed", logger.Fields("op", ev.Op.String()))
				_ = s.Load()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("model watcher error", logger.Fields(logger.FieldError, err.Error()))
			}
		}
	}()
	s.log.Info("watching model file", logger.Fields("path", s.cfg.Path))
	return nil
}

// Stop ends the watcher, if any. The loaded model stays usable.
func (s *Store) Stop(context.Context) error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}

// Health is degraded rather than unhealthy without a model: screenings
// still complete with an Unknown label.
func (s *Store) Health(context.Context) component.Health {
	h := component.Health{
		Name:    s.Name(),
		Status:  component.StatusHealthy,
		Details: map[string]string{"path": s.cfg.Path},
	}
	cur := s.current.Load()
	if cur == nil {
		h.Status = component.StatusDegraded
		h.Message = "model not loaded"
		s.mu.Lock()
		if s.lastErr != nil {
			h.Details["error"] = s.lastErr.Error()
		}
		s.mu.Unlock()
		return h
	}
	h.Details["loaded_at"] = cur.loadedAt.UTC().Format(time.RFC3339)
	return h
}
