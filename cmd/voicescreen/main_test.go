package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/classifier"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/testutil"
)

type cliEnv struct {
	dir        string
	configPath string
}

// setupCLI writes a config pointing at a fake transcoder and a pitch stump
// model: voices below 150 Hz are Healthy (p=0.2), above are Disorder (p=0.7).
func setupCLI(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()

	modelPath := filepath.Join(dir, "model.json")
	model := &classifier.Artifact{
		Kind:    classifier.KindForest,
		Width:   features.Size,
		Classes: []string{"0", "1"},
		Trees: []classifier.Tree{{Nodes: []classifier.Node{
			{Feature: features.IdxFo, Threshold: 150, Left: 1, Right: 2},
			{Left: -1, Right: -1, Value: []float64{8, 2}},
			{Left: -1, Right: -1, Value: []float64{3, 7}},
		}}},
	}
	if err := classifier.SaveFile(modelPath, model); err != nil {
		t.Fatalf("saving model: %v", err)
	}

	cfg := fmt.Sprintf(`name: voicescreen-test
environment: development
logging:
  level: error
audio:
  temp_dir: %s
transcoder:
  binary: %s
  timeout: 5s
model:
  path: %s
screening:
  batch_workers: 2
`, dir, testutil.FakeTranscoder(t), modelPath)
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return cliEnv{dir: dir, configPath: configPath}
}

func (e cliEnv) voice(t *testing.T, name string, f0 float64) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := testutil.WriteWAV(path, testutil.Voice(f0, 1, audio.SampleRate, 0.6), audio.SampleRate, 1); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Name != serviceName {
		t.Errorf("expected name %q, got %q", serviceName, cfg.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Model.PositiveClass != "1" {
		t.Errorf("expected positive class 1, got %q", cfg.Model.PositiveClass)
	}
	if cfg.Transcoder.Binary != "ffmpeg" {
		t.Errorf("expected ffmpeg binary, got %q", cfg.Transcoder.Binary)
	}
}

func TestAppConfigValidateNamesSection(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	cfg.Screening.BatchWorkers = 100
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "config.screening") {
		t.Errorf("expected config.screening error, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	env := setupCLI(t)
	cfg, err := loadConfig(env.configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "voicescreen-test" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.Screening.BatchWorkers != 2 {
		t.Errorf("expected 2 batch workers, got %d", cfg.Screening.BatchWorkers)
	}
	if cfg.Transcoder.Timeout.Seconds() != 5 {
		t.Errorf("expected 5s timeout, got %s", cfg.Transcoder.Timeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestScreenCommandJSON(t *testing.T) {
	env := setupCLI(t)
	low := env.voice(t, "low.wav", 110)
	high := env.voice(t, "high.wav", 220)

	out, err := run(t, "screen", "--config", env.configPath, "--json", low, high)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var rows []screenRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	tests := []struct {
		file       string
		prediction string
		prob       float64
	}{
		{"low.wav", "Healthy", 0.2},
		{"high.wav", "Disorder", 0.7},
	}
	for i, tt := range tests {
		r := rows[i]
		if r.File != tt.file || r.Prediction != tt.prediction {
			t.Errorf("row %d: expected %s %s, got %s %s", i, tt.file, tt.prediction, r.File, r.Prediction)
		}
		if r.Probability == nil || *r.Probability != tt.prob {
			t.Errorf("row %d: expected probability %v, got %v", i, tt.prob, r.Probability)
		}
	}
}

func TestScreenCommandTable(t *testing.T) {
	env := setupCLI(t)
	high := env.voice(t, "high.wav", 220)

	out, err := run(t, "screen", "--config", env.configPath, high)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	for _, want := range []string{"File", "Prediction", "high.wav", "Disorder", "0.70"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
}

func TestScreenCommandReportsFailures(t *testing.T) {
	env := setupCLI(t)
	good := env.voice(t, "good.wav", 220)
	bad := filepath.Join(env.dir, "bad.webm")
	if err := os.WriteFile(bad, []byte("BAD not audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "screen", "--config", env.configPath, "--json", bad, good)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 recordings failed") {
		t.Fatalf("expected partial failure error, got %v", err)
	}

	var rows []screenRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if rows[0].Error == "" || rows[0].Prediction != "" {
		t.Errorf("expected error row for bad.webm, got %+v", rows[0])
	}
	if rows[1].Prediction != "Disorder" {
		t.Errorf("expected Disorder for good.wav, got %+v", rows[1])
	}
}

func TestScreenCommandArgs(t *testing.T) {
	if _, err := run(t, "screen"); err == nil {
		t.Error("expected error without files")
	}
	if _, err := run(t, "screen", filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for unreadable file")
	}
}

func TestFeaturesCommandJSON(t *testing.T) {
	env := setupCLI(t)
	path := env.voice(t, "voice.wav", 180)

	out, err := run(t, "features", "--config", env.configPath, "--json", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var rep featureReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	names := features.Names()
	if len(rep.Features) != len(names) {
		t.Fatalf("expected %d features, got %d", len(names), len(rep.Features))
	}
	for i, n := range names {
		if rep.Features[i].Name != n {
			t.Errorf("expected feature %d to be %s, got %s", i, n, rep.Features[i].Name)
		}
	}
	fo := rep.Features[features.IdxFo].Value
	if fo < 170 || fo > 190 {
		t.Errorf("expected fo near 180 Hz, got %v", fo)
	}
}

func TestFeaturesCommandTable(t *testing.T) {
	env := setupCLI(t)
	path := env.voice(t, "voice.wav", 180)

	out, err := run(t, "features", "--config", env.configPath, path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	for _, want := range []string{"voice.wav", "fo", "jitter", "mfcc10"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if info["version"] != "dev" {
		t.Errorf("expected version dev, got %v", info["version"])
	}
}
