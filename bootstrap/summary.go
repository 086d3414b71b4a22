package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kbukum/voicescreen/component"
)

// RouteInfo describes a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary collects startup information and renders it once the
// application is ready.
type Summary struct {
	mu              sync.Mutex
	name            string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
	out             io.Writer
}

// NewSummary creates a summary writing to stdout.
func NewSummary(name, version string) *Summary {
	return &Summary{name: name, version: version, out: os.Stdout}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startupDuration = d
}

// TrackRoute records a route for display.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// Routes returns the tracked routes sorted by path then method.
func (s *Summary) Routes() []RouteInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	routes := append([]RouteInfo(nil), s.routes...)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// Display renders component health and routes.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil || out == io.Discard {
		return
	}
	_, _ = io.WriteString(out, s.Render(ctx, registry))
}

// Render returns the summary as text.
func (s *Summary) Render(ctx context.Context, registry *component.Registry) string {
	var b strings.Builder

	s.mu.Lock()
	fmt.Fprintf(&b, "%s %s ready in %s\n", s.name, s.version, s.startupDuration.Round(time.Millisecond))
	s.mu.Unlock()

	if registry != nil {
		healths := registry.HealthAll(ctx)
		if len(healths) > 0 {
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Component", "Status", "Message"})
			for _, h := range healths {
				tw.AppendRow(table.Row{h.Name, string(h.Status), h.Message})
			}
			tw.AppendFooter(table.Row{"overall", string(component.Overall(healths)), ""})
			b.WriteString(tw.Render())
			b.WriteString("\n")
		}
	}

	if routes := s.Routes(); len(routes) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Method", "Path", "Handler"})
		for _, r := range routes {
			tw.AppendRow(table.Row{r.Method, r.Path, r.Handler})
		}
		b.WriteString(tw.Render())
		b.WriteString("\n")
	}
	return b.String()
}
