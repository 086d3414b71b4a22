package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kbukum/voicescreen/audio"
	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/testutil"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{}, logger.NewDefault("test"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func waveform(t *testing.T, samples []float64) *audio.Waveform {
	t.Helper()
	wf, err := audio.NewWaveform(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return wf
}

func TestNames(t *testing.T) {
	n := Names()
	if len(n) != Size {
		t.Fatalf("expected %d names, got %d", Size, len(n))
	}
	if n[IdxFo] != "fo" || n[IdxPPE] != "ppe" || n[IdxMFCC1] != "mfcc1" || n[Size-1] != "mfcc10" {
		t.Errorf("unexpected name order: %v", n)
	}
	n[0] = "changed"
	if Names()[0] != "fo" {
		t.Error("expected Names to return a copy")
	}
}

func TestExtractSilence(t *testing.T) {
	e := newTestExtractor(t)
	v, rep := e.Extract(context.Background(), waveform(t, testutil.Silence(16000)))

	if len(v.Slice()) != Size {
		t.Fatalf("expected %d values, got %d", Size, len(v.Slice()))
	}
	for _, idx := range []int{IdxFo, IdxFhi, IdxFlo, IdxSpread1, IdxSpread2, IdxD2, IdxPPE, IdxJitter, IdxShimmer, IdxHNR, IdxNHR} {
		if v[idx] != 0 {
			t.Errorf("expected %s = 0 for silence, got %f", Names()[idx], v[idx])
		}
	}
	if rep.VoicedFrames != 0 {
		t.Errorf("expected no voiced frames, got %d", rep.VoicedFrames)
	}
	if !rep.OK() {
		t.Errorf("expected no degradations, got %+v", rep.Degraded)
	}
	if !allFinite(v.Slice()) {
		t.Errorf("expected finite vector, got %v", v)
	}
}

func TestExtractChirp(t *testing.T) {
	e := newTestExtractor(t)
	v, rep := e.Extract(context.Background(), waveform(t, testutil.Chirp(100, 300, 2, audio.SampleRate, 0.5)))

	if !rep.OK() {
		t.Fatalf("expected no degradations, got %+v", rep.Degraded)
	}
	for _, idx := range []int{IdxFo, IdxFhi, IdxFlo} {
		if v[idx] < 95 || v[idx] > 305 {
			t.Errorf("expected %s within chirp band, got %f", Names()[idx], v[idx])
		}
	}
	if !(v[IdxFlo] <= v[IdxFo] && v[IdxFo] <= v[IdxFhi]) {
		t.Errorf("expected flo <= fo <= fhi, got %f %f %f", v[IdxFlo], v[IdxFo], v[IdxFhi])
	}
	if v[IdxFhi]-v[IdxFlo] < 100 {
		t.Errorf("expected the sweep to span at least 100 Hz, got %f", v[IdxFhi]-v[IdxFlo])
	}
	if v[IdxJitter] < 0 || v[IdxJitter] > 0.03 {
		t.Errorf("expected jitter near 0, got %f", v[IdxJitter])
	}
	if v[IdxShimmer] < 0 || v[IdxShimmer] > 0.05 {
		t.Errorf("expected shimmer near 0, got %f", v[IdxShimmer])
	}
	if v[IdxHNR] <= 0 || v[IdxNHR] <= 0 {
		t.Errorf("expected positive hnr and nhr, got %f %f", v[IdxHNR], v[IdxNHR])
	}
	if math.Abs(v[IdxD2]-v[IdxSpread1]*v[IdxSpread1]) > 1e-6*math.Max(1, v[IdxD2]) {
		t.Errorf("expected d2 = spread1², got %f vs %f", v[IdxD2], v[IdxSpread1])
	}
}

func TestExtractSinePitch(t *testing.T) {
	e := newTestExtractor(t)
	v, _ := e.Extract(context.Background(), waveform(t, testutil.Sine(200, 1, audio.SampleRate, 0.5)))
	if math.Abs(v[IdxFo]-200) > 2 {
		t.Errorf("expected fo ≈ 200, got %f", v[IdxFo])
	}
	if v[IdxSpread1] > 1 {
		t.Errorf("expected tiny pitch spread for a steady tone, got %f", v[IdxSpread1])
	}
}

func TestExtractPitchIgnoresLoudness(t *testing.T) {
	e := newTestExtractor(t)
	ref, refRep := e.Extract(context.Background(), waveform(t, testutil.Chirp(100, 300, 2, audio.SampleRate, 0.5)))
	if refRep.VoicedFrames == 0 {
		t.Fatal("expected voiced frames at full scale")
	}

	for _, amp := range []float64{0.02, 0.01, 0.005} {
		v, rep := e.Extract(context.Background(), waveform(t, testutil.Chirp(100, 300, 2, audio.SampleRate, amp)))
		if rep.VoicedFrames != refRep.VoicedFrames {
			t.Errorf("amp %g: expected %d voiced frames, got %d", amp, refRep.VoicedFrames, rep.VoicedFrames)
		}
		for _, idx := range []int{IdxFo, IdxFhi, IdxFlo, IdxJitter} {
			if math.Abs(v[idx]-ref[idx]) > 1e-6*math.Max(1, ref[idx]) {
				t.Errorf("amp %g: expected %s = %f, got %f", amp, Names()[idx], ref[idx], v[idx])
			}
		}
	}
}

func TestTrackPitchVoicingFloor(t *testing.T) {
	// one second of tone followed by one second of the same tone at 1%
	x := testutil.Sine(200, 1, audio.SampleRate, 0.5)
	for _, s := range testutil.Sine(200, 1, audio.SampleRate, 0.005) {
		x = append(x, s)
	}

	tests := []struct {
		name  string
		floor float64
		quiet bool
	}{
		{"default floor drops the quiet half", 0.1, false},
		{"zero disables the gate", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor := tt.floor
			cfg := Config{VoicingFloor: &floor}
			cfg.ApplyDefaults()
			if *cfg.VoicingFloor != tt.floor {
				t.Fatalf("expected floor %g to survive defaults, got %g", tt.floor, *cfg.VoicingFloor)
			}
			c := trackPitch(x, audio.SampleRate, cfg)
			tail := c.f0[len(c.f0)-10:]
			for _, f := range tail {
				if voiced := f > 0; voiced != tt.quiet {
					t.Fatalf("expected quiet frames voiced=%v, got f0 %v", tt.quiet, tail)
				}
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := newTestExtractor(t)
	wf := waveform(t, testutil.Voice(140, 1, audio.SampleRate, 0.6))
	a, _ := e.Extract(context.Background(), wf)
	b, _ := e.Extract(context.Background(), wf)
	if a != b {
		t.Errorf("expected identical vectors, got %v and %v", a, b)
	}
}

func TestExtractNoiseStaysFinite(t *testing.T) {
	e := newTestExtractor(t)
	v, _ := e.Extract(context.Background(), waveform(t, testutil.Noise(16000, 0.3, 3)))
	if !allFinite(v.Slice()) {
		t.Errorf("expected finite vector, got %v", v)
	}
}

func TestIsolate(t *testing.T) {
	val, deg := isolate("boom", 7, func() (int, error) { panic("kaboom") })
	if val != 7 || deg == nil {
		t.Fatalf("expected default and degradation, got %d %v", val, deg)
	}
	if !errors.Is(deg.Err, apperrors.FeatureDegraded("", nil)) {
		t.Errorf("expected FEATURE_DEGRADED, got %v", deg.Err)
	}

	val, deg = isolate("err", 3, func() (int, error) { return 9, errors.New("bad") })
	if val != 3 || deg == nil || deg.Feature != "err" {
		t.Errorf("expected default on error, got %d %+v", val, deg)
	}

	val, deg = isolate("ok", 3, func() (int, error) { return 9, nil })
	if val != 9 || deg != nil {
		t.Errorf("expected value without degradation, got %d %+v", val, deg)
	}
}

func TestComputePitchStats(t *testing.T) {
	tests := []struct {
		name   string
		voiced []float64
		want   pitchStats
	}{
		{"none", nil, pitchStats{}},
		{"single", []float64{120}, pitchStats{fo: 120, fhi: 120, flo: 120}},
		{"pair", []float64{100, 120}, pitchStats{fo: 110, fhi: 120, flo: 100, spread1: 10, spread2: 20, d2: 100}},
		{"falling", []float64{300, 200, 100}, pitchStats{fo: 200, fhi: 300, flo: 100, spread1: math.Sqrt(20000.0 / 3), spread2: -100, d2: 20000.0 / 3}},
		{"up and down", []float64{100, 200, 100}, pitchStats{fo: 400.0 / 3, fhi: 200, flo: 100, spread1: math.Sqrt(20000.0 / 9), spread2: 0, d2: 20000.0 / 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computePitchStats(tt.voiced)
			pairs := [][2]float64{
				{tt.want.fo, got.fo}, {tt.want.fhi, got.fhi}, {tt.want.flo, got.flo},
				{tt.want.spread1, got.spread1}, {tt.want.spread2, got.spread2}, {tt.want.d2, got.d2},
			}
			for _, p := range pairs {
				if math.Abs(p[0]-p[1]) > 1e-9*math.Max(1, math.Abs(p[0])) {
					t.Errorf("expected %+v, got %+v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestDFA(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if got := dfa(testutil.Noise(50, 1, 1), cfg); got != 0 {
		t.Errorf("expected 0 for short input, got %f", got)
	}
	if got := dfa([]float64{math.NaN(), math.Inf(1)}, cfg); got != 0 {
		t.Errorf("expected 0 for non-finite input, got %f", got)
	}

	white := dfa(testutil.Noise(4000, 1, 11), cfg)
	if white < 0.25 || white > 0.85 {
		t.Errorf("expected white-noise exponent near 0.5, got %f", white)
	}

	steps := testutil.Noise(4000, 1, 12)
	walk := make([]float64, len(steps))
	var acc float64
	for i, s := range steps {
		acc += s
		walk[i] = acc
	}
	if brown := dfa(walk, cfg); brown <= white {
		t.Errorf("expected random-walk exponent above white noise, got %f <= %f", brown, white)
	}
}

func TestLogarithmicN(t *testing.T) {
	ns := logarithmicN(4, 100, 1.2)
	want := []int{4, 5, 6, 8, 9}
	for i, w := range want {
		if ns[i] != w {
			t.Fatalf("expected %v prefix, got %v", want, ns)
		}
	}
	if ns[len(ns)-1] != 88 {
		t.Errorf("expected last box size 88, got %d", ns[len(ns)-1])
	}
	if logarithmicN(4, 2, 1.2) != nil {
		t.Error("expected nil when max < min")
	}
}

func TestHarmonicsToNoise(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	tone := harmonicsToNoise(testutil.Sine(150, 1, audio.SampleRate, 0.5), audio.SampleRate, cfg)
	noise := harmonicsToNoise(testutil.Noise(16000, 0.5, 5), audio.SampleRate, cfg)
	if tone < 20 {
		t.Errorf("expected high HNR for a pure tone, got %f", tone)
	}
	if noise >= tone {
		t.Errorf("expected noise HNR below tone HNR, got %f >= %f", noise, tone)
	}
	if harmonicsToNoise(testutil.Silence(16000), audio.SampleRate, cfg) != 0 {
		t.Error("expected 0 HNR for silence")
	}
	if noiseToHarmonics(-3) != 0 || noiseToHarmonics(0) != 0 {
		t.Error("expected NHR 0 for non-positive HNR")
	}
	if got := noiseToHarmonics(10); math.Abs(got-0.1) > 1e-6 {
		t.Errorf("expected NHR 0.1, got %f", got)
	}
}

func TestMelScale(t *testing.T) {
	for _, hz := range []float64{0, 300, 1000, 4000, 8000} {
		if got := melToHz(hzToMel(hz)); math.Abs(got-hz) > 1e-6 {
			t.Errorf("expected round trip %f, got %f", hz, got)
		}
	}
	if math.Abs(hzToMel(1000)-15) > 1e-9 {
		t.Errorf("expected 1000 Hz = 15 mel, got %f", hzToMel(1000))
	}
}

func TestDCTBasisOrthonormal(t *testing.T) {
	d := dctBasis(MFCCCount, mfccMels)
	for i := 0; i < MFCCCount; i++ {
		for j := 0; j < MFCCCount; j++ {
			var dot float64
			ri, rj := d.RawRowView(i), d.RawRowView(j)
			for k := range ri {
				dot += ri[k] * rj[k]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Fatalf("rows %d,%d: expected %f, got %f", i, j, want, dot)
			}
		}
	}
}

func TestMFCC(t *testing.T) {
	e := newMFCCExtractor(audio.SampleRate)

	silent, err := e.mfcc(testutil.Silence(16000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// constant -100 dB spectrum: only the DC cepstral term is non-zero
	if math.Abs(silent[0]-(-100*math.Sqrt(mfccMels))) > 1e-6 {
		t.Errorf("expected mfcc1 = %f for silence, got %f", -100*math.Sqrt(mfccMels), silent[0])
	}
	for k := 1; k < MFCCCount; k++ {
		if math.Abs(silent[k]) > 1e-6 {
			t.Errorf("expected mfcc%d = 0 for silence, got %f", k+1, silent[k])
		}
	}

	tone, err := e.mfcc(testutil.Sine(440, 1, audio.SampleRate, 0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tone[0] <= silent[0] {
		t.Errorf("expected tone energy above silence, got %f <= %f", tone[0], silent[0])
	}

	if _, err := e.mfcc(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{PitchFloor: 500, PitchCeiling: 75}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when ceiling is below floor")
	}
	if _, err := NewExtractor(cfg, logger.NewDefault("test"), nil); err == nil {
		t.Error("expected NewExtractor to reject invalid config")
	}
}
