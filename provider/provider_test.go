package provider

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/resilience"
)

func echo(name string) *Func[string, string] {
	return &Func[string, string]{
		ProviderName: name,
		Fn: func(_ context.Context, in string) (string, error) {
			return in, nil
		},
	}
}

func TestFuncDefaults(t *testing.T) {
	p := echo("echo")
	if p.Name() != "echo" {
		t.Errorf("expected name 'echo', got %s", p.Name())
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected provider without probe to be available")
	}
	out, err := p.Execute(context.Background(), "hi")
	if err != nil || out != "hi" {
		t.Errorf("expected 'hi', got %q (%v)", out, err)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(tag string) Middleware[string, string] {
		return func(inner RequestResponse[string, string]) RequestResponse[string, string] {
			return &Func[string, string]{
				ProviderName: inner.Name(),
				Fn: func(ctx context.Context, in string) (string, error) {
					order = append(order, tag)
					return inner.Execute(ctx, in)
				},
			}
		}
	}

	p := Chain(mark("a"), mark("b"), mark("c"))(echo("echo"))
	if _, err := p.Execute(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order, "") != "abc" {
		t.Errorf("expected order abc, got %v", order)
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test")

	failing := &Func[string, string]{
		ProviderName: "failing",
		Fn: func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		},
	}
	p := WithLogging[string, string](log)(failing)
	if _, err := p.Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error to pass through")
	}
	if !strings.Contains(buf.String(), "provider execute failed") {
		t.Errorf("expected failure log line, got %s", buf.String())
	}
}

func TestWithMetricsNilSafe(t *testing.T) {
	p := WithMetrics[string, string](nil)(echo("echo"))
	if _, err := p.Execute(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithTracingPassesThrough(t *testing.T) {
	p := WithTracing[string, string]("svc")(echo("echo"))
	out, err := p.Execute(context.Background(), "x")
	if err != nil || out != "x" {
		t.Errorf("expected 'x', got %q (%v)", out, err)
	}
	if p.Name() != "echo" {
		t.Errorf("expected name 'echo', got %s", p.Name())
	}
}

func TestWithResilienceEmptyConfigReturnsSame(t *testing.T) {
	p := echo("echo")
	if got := WithResilience[string, string](p, ResilienceConfig{}); got != RequestResponse[string, string](p) {
		t.Error("expected provider to be returned unchanged")
	}
}

func TestWithResilienceCircuitOpens(t *testing.T) {
	calls := 0
	failing := &Func[string, string]{
		ProviderName: "failing",
		Fn: func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("infra down")
		},
	}
	cb := resilience.CircuitBreakerConfig{Name: "t", MaxFailures: 2, Timeout: time.Minute, HalfOpenMaxCalls: 1}
	p := WithResilience[string, string](failing, ResilienceConfig{CircuitBreaker: &cb})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := p.Execute(ctx, "x"); err == nil || err.Error() != "infra down" {
			t.Fatalf("expected raw error on call %d, got %v", i, err)
		}
	}
	if p.IsAvailable(ctx) {
		t.Error("expected provider unavailable while circuit is open")
	}

	_, err := p.Execute(ctx, "x")
	if !errors.Is(err, apperrors.ServiceUnavailable("")) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", calls)
	}
}

func TestWithResilienceIgnoredFailures(t *testing.T) {
	badInput := errors.New("bad input")
	failing := &Func[string, string]{
		ProviderName: "failing",
		Fn: func(context.Context, string) (string, error) {
			return "", badInput
		},
	}
	cb := resilience.CircuitBreakerConfig{
		Name:             "t",
		MaxFailures:      1,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, badInput) },
	}
	p := WithResilience[string, string](failing, ResilienceConfig{CircuitBreaker: &cb})

	for i := 0; i < 3; i++ {
		if _, err := p.Execute(context.Background(), "x"); !errors.Is(err, badInput) {
			t.Fatalf("expected bad input error, got %v", err)
		}
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected circuit to stay closed for ignored failures")
	}
}

func TestWithResilienceBulkheadFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &Func[string, string]{
		ProviderName: "blocking",
		Fn: func(context.Context, string) (string, error) {
			close(started)
			<-release
			return "done", nil
		},
	}
	bh := resilience.BulkheadConfig{Name: "t", MaxConcurrent: 1}
	p := WithResilience[string, string](blocking, ResilienceConfig{Bulkhead: &bh})

	done := make(chan error, 1)
	go func() {
		_, err := p.Execute(context.Background(), "x")
		done <- err
	}()
	<-started

	_, err := p.Execute(context.Background(), "y")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("unexpected error from first call: %v", err)
	}
}

func TestGuardedNilGuard(t *testing.T) {
	out, err := Guarded(context.Background(), nil, func() (int, error) { return 7, nil })
	if err != nil || out != 7 {
		t.Errorf("expected 7, got %d (%v)", out, err)
	}
}

func TestGuardedBulkheadWaitCanceled(t *testing.T) {
	g := NewGuard(ResilienceConfig{Bulkhead: &resilience.BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second}})
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Guarded(context.Background(), g, func() (int, error) {
			close(started)
			<-hold
			return 0, nil
		})
	}()
	<-started
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Guarded(ctx, g, func() (int, error) { return 1, nil })
	if !errors.Is(err, apperrors.Timeout("")) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
	if g.Circuit() != resilience.StateClosed {
		t.Errorf("expected closed circuit without breaker, got %s", g.Circuit())
	}
}

func TestAroundSeesNameAndError(t *testing.T) {
	var seenName string
	var seenErr error
	hook := func(ctx context.Context, name string, next func(context.Context) error) error {
		seenName = name
		seenErr = next(ctx)
		return seenErr
	}
	failing := &Func[string, string]{
		ProviderName: "ffmpeg",
		Fn: func(context.Context, string) (string, error) {
			return "partial", errors.New("exit 1")
		},
	}
	p := Around[string, string](hook)(failing)
	out, err := p.Execute(context.Background(), "x")
	if out != "partial" || err == nil {
		t.Errorf("expected output and error to pass through, got %q (%v)", out, err)
	}
	if seenName != "ffmpeg" || seenErr != err {
		t.Errorf("expected hook to see ffmpeg and the error, got %q (%v)", seenName, seenErr)
	}
}
