package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeFFmpeg copies the -i input to the last argument, behaving like ffmpeg
// for inputs that are already canonical WAV. Inputs starting with "BAD"
// exit 1 with an ffmpeg-like message; inputs starting with "SLOW" hang for
// ten seconds. When FAKE_FFMPEG_CALLS is set, each invocation appends a line
// to that file.
const fakeFFmpeg = `#!/bin/sh
in=""
prev=""
last=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  prev="$a"
  last="$a"
done
if [ -n "$FAKE_FFMPEG_CALLS" ]; then echo call >> "$FAKE_FFMPEG_CALLS"; fi
if [ -z "$in" ] || [ ! -f "$in" ]; then echo "no input" >&2; exit 1; fi
if head -c 4 "$in" | grep -q SLOW; then exec sleep 10; fi
if head -c 3 "$in" | grep -q BAD; then echo "$in: Invalid data found when processing input" >&2; exit 1; fi
cp "$in" "$last"
`

// FakeTranscoder writes an executable ffmpeg stand-in into a temp dir and
// returns its path.
func FakeTranscoder(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("writing fake transcoder: %v", err)
	}
	return path
}
