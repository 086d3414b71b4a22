package screening_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/classifier"
	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/screening"
	"github.com/kbukum/voicescreen/testutil"
)

var decodeErr = apperrors.AudioDecode("", nil)

type countingTranscoder struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTranscoder) Transcode(_ context.Context, in, out string, _, _ int) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o600)
}

func (c *countingTranscoder) Available(context.Context) bool { return true }

func (c *countingTranscoder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// pitchStump labels fo above 150 Hz as the positive class.
func pitchStump() *classifier.Artifact {
	return &classifier.Artifact{
		Kind:    classifier.KindForest,
		Width:   features.Size,
		Classes: []string{"0", "1"},
		Trees: []classifier.Tree{{Nodes: []classifier.Node{
			{Feature: features.IdxFo, Threshold: 150, Left: 1, Right: 2},
			{Left: -1, Right: -1, Value: []float64{8, 2}},
			{Left: -1, Right: -1, Value: []float64{3, 7}},
		}}},
	}
}

type fixture struct {
	orch *screening.Orchestrator
	tc   *countingTranscoder
}

func newFixture(t *testing.T, modelPath string, cfg screening.Config) fixture {
	t.Helper()
	log := logger.NewDefault("test")
	tc := &countingTranscoder{}
	norm := audio.NewNormalizer(audio.Config{TempDir: t.TempDir()}, tc, log)
	ext, err := features.NewExtractor(features.Config{}, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := classifier.NewStore(classifier.Config{Path: modelPath}, log)
	orch, err := screening.New(cfg, norm, ext, classifier.NewAdapter(store, log, nil), log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return fixture{orch: orch, tc: tc}
}

func withModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := classifier.SaveFile(path, pitchStump()); err != nil {
		t.Fatal(err)
	}
	return path
}

func chirpBlob(t *testing.T) audio.Blob {
	return audio.Blob{Data: testutil.WAVBytes(t, testutil.Chirp(100, 300, 2, audio.SampleRate, 0.5), audio.SampleRate), Hint: "wav"}
}

func TestRunChirp(t *testing.T) {
	f := newFixture(t, withModel(t), screening.Config{})
	res, err := f.orch.Run(context.Background(), chirpBlob(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := res.Features
	for _, idx := range []int{features.IdxFo, features.IdxFhi, features.IdxFlo} {
		if v[idx] < 95 || v[idx] > 305 {
			t.Errorf("expected %s in [100,300], got %v", features.Names()[idx], v[idx])
		}
	}
	if v[features.IdxJitter] > 0.03 {
		t.Errorf("expected jitter near 0, got %v", v[features.IdxJitter])
	}
	if v[features.IdxShimmer] > 0.05 {
		t.Errorf("expected shimmer near 0, got %v", v[features.IdxShimmer])
	}
	if res.Classification.Label != classifier.LabelDisorder {
		t.Errorf("expected Disorder, got %s", res.Classification.Label)
	}
	if p := res.Classification.Probability; p < 0 || p > 1 {
		t.Errorf("expected probability in [0,1], got %v", p)
	}
	if got := screening.NewResponse(res); got.Probability != 0.7 {
		t.Errorf("expected response probability 0.7, got %v", got.Probability)
	}
}

func TestRunEmptyPayload(t *testing.T) {
	f := newFixture(t, withModel(t), screening.Config{})
	_, err := f.orch.Run(context.Background(), audio.Blob{})

	var stageErr *screening.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageError, got %v", err)
	}
	if stageErr.Stage != screening.StageReceived {
		t.Errorf("expected stage received, got %s", stageErr.Stage)
	}
	if !errors.Is(err, decodeErr) {
		t.Errorf("expected AUDIO_DECODE_ERROR, got %v", err)
	}
	if f.tc.count() != 0 {
		t.Errorf("expected transcoder not invoked, got %d calls", f.tc.count())
	}
}

func TestRunMissingModel(t *testing.T) {
	f := newFixture(t, filepath.Join(t.TempDir(), "absent.json"), screening.Config{})
	res, err := f.orch.Run(context.Background(), chirpBlob(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Classification != classifier.Unknown() {
		t.Errorf("expected Unknown/0, got %+v", res.Classification)
	}
	if got := screening.NewResponse(res); got.Prediction != "Unknown" || got.Probability != 0 {
		t.Errorf("expected Unknown/0 response, got %+v", got)
	}
}

func TestRunIdempotent(t *testing.T) {
	for _, tt := range []struct {
		name      string
		cacheSize int
		wantCalls int
	}{
		{"cached", 0, 1},
		{"uncached", -1, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, withModel(t), screening.Config{CacheSize: tt.cacheSize})
			blob := audio.Blob{Data: testutil.WAVBytes(t, testutil.Voice(130, 1, audio.SampleRate, 0.6), audio.SampleRate)}

			first, err := f.orch.Run(context.Background(), blob)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			second, err := f.orch.Run(context.Background(), blob)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if first.Classification != second.Classification {
				t.Errorf("expected identical classification, got %+v and %+v", first.Classification, second.Classification)
			}
			if first.Features != second.Features {
				t.Error("expected identical feature vectors")
			}
			if second.Cached != (tt.cacheSize >= 0) {
				t.Errorf("expected cached=%v, got %v", tt.cacheSize >= 0, second.Cached)
			}
			if f.tc.count() != tt.wantCalls {
				t.Errorf("expected %d transcoder calls, got %d", tt.wantCalls, f.tc.count())
			}
		})
	}
}

type failingNormalizer struct{ err error }

func (n failingNormalizer) Normalize(context.Context, audio.Blob) (*audio.Waveform, error) {
	return nil, n.err
}

type panickyExtractor struct{}

func (panickyExtractor) Extract(context.Context, *audio.Waveform) (features.Vector, features.Report) {
	panic("extract must not run")
}

type fixedClassifier struct{}

func (fixedClassifier) Classify(context.Context, features.Vector) classifier.Result {
	return classifier.Result{Label: classifier.LabelHealthy, Probability: 0.1}
}

type toneNormalizer struct{}

func (toneNormalizer) Normalize(context.Context, audio.Blob) (*audio.Waveform, error) {
	return audio.NewWaveform(testutil.Sine(200, 1, audio.SampleRate, 0.5))
}

type degradedExtractor struct{}

func (degradedExtractor) Extract(context.Context, *audio.Waveform) (features.Vector, features.Report) {
	return features.Vector{}, features.Report{Degraded: []features.Degradation{{Feature: features.GroupNoise}}}
}

// stagesReached returns the stage of every "stage reached" line in buf.
func stagesReached(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var stages []string
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var line struct {
			Message string `json:"message"`
			Stage   string `json:"stage"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("unexpected log line %q: %v", sc.Text(), err)
		}
		if line.Message == "stage reached" {
			stages = append(stages, line.Stage)
		}
	}
	return stages
}

func TestRunCacheHit(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test")
	orch, err := screening.New(screening.Config{}, toneNormalizer{}, degradedExtractor{}, fixedClassifier{}, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blob := audio.Blob{Data: []byte("same bytes")}

	first, err := orch.Run(context.Background(), blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Degraded[0] = "tampered"
	_ = append(first.Degraded, "extra")

	buf.Reset()
	second, err := orch.Run(context.Background(), blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Fatal("expected a cache hit")
	}
	if !slices.Equal(second.Degraded, []string{features.GroupNoise}) {
		t.Errorf("expected [%s], got %v", features.GroupNoise, second.Degraded)
	}

	want := []string{"normalized", "feature_extracted", "classified", "done"}
	if got := stagesReached(t, &buf); !slices.Equal(got, want) {
		t.Errorf("expected stages %v, got %v", want, got)
	}
}

func TestRunWrapsForeignNormalizerErrors(t *testing.T) {
	log := logger.NewDefault("test")
	orch, err := screening.New(screening.Config{}, failingNormalizer{err: fmt.Errorf("disk full")},
		panickyExtractor{}, fixedClassifier{}, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = orch.Run(context.Background(), audio.Blob{Data: []byte("x")})
	if !errors.Is(err, decodeErr) {
		t.Errorf("expected AUDIO_DECODE_ERROR, got %v", err)
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	f := newFixture(t, withModel(t), screening.Config{BatchWorkers: 2})
	items := []screening.Item{
		{Name: "low.wav", Blob: audio.Blob{Data: testutil.WAVBytes(t, testutil.Voice(110, 1, audio.SampleRate, 0.6), audio.SampleRate)}},
		{Name: "empty.wav"},
		{Name: "high.wav", Blob: audio.Blob{Data: testutil.WAVBytes(t, testutil.Voice(220, 1, audio.SampleRate, 0.6), audio.SampleRate)}},
	}

	out, err := f.orch.Batch(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(items) {
		t.Fatalf("expected %d outcomes, got %d", len(items), len(out))
	}
	for i, o := range out {
		if o.Name != items[i].Name {
			t.Errorf("expected outcome %d to be %s, got %s", i, items[i].Name, o.Name)
		}
	}
	if out[0].Err != nil || out[0].Result.Classification.Label != classifier.LabelHealthy {
		t.Errorf("expected low voice Healthy, got %+v / %v", out[0].Result.Classification, out[0].Err)
	}
	if !errors.Is(out[1].Err, decodeErr) {
		t.Errorf("expected decode error for empty item, got %v", out[1].Err)
	}
	if out[2].Err != nil || out[2].Result.Classification.Label != classifier.LabelDisorder {
		t.Errorf("expected high voice Disorder, got %+v / %v", out[2].Result.Classification, out[2].Err)
	}
}

func TestNewResponseRounding(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.123, 0.12},
		{0.6549, 0.65},
		{0.999, 1},
		{1, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got := screening.NewResponse(screening.Result{Classification: classifier.Result{Label: classifier.LabelHealthy, Probability: tt.in}})
			if got.Probability != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got.Probability)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := screening.Config{BatchWorkers: 100}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
	cfg = screening.Config{}
	cfg.ApplyDefaults()
	if cfg.CacheSize != 256 || cfg.BatchWorkers != 4 {
		t.Errorf("expected defaults 256/4, got %d/%d", cfg.CacheSize, cfg.BatchWorkers)
	}
}
