package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Blob is an uploaded recording of unknown codec.
type Blob struct {
	Data []byte
	// Hint is a container/codec hint such as "webm" or "wav". Optional.
	Hint string
}

// Empty reports whether the blob carries no audio bytes.
func (b Blob) Empty() bool { return len(b.Data) == 0 }

// Digest returns the hex SHA-256 of the blob bytes.
func (b Blob) Digest() string {
	sum := sha256.Sum256(b.Data)
	return hex.EncodeToString(sum[:])
}

// HintFromFilename derives a codec hint from a file extension.
func HintFromFilename(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// inputName is the temp file name handed to the transcoder. ffmpeg probes
// content, so the extension only needs to be plausible.
func (b Blob) inputName() string {
	hint := strings.ToLower(strings.TrimSpace(b.Hint))
	if hint == "" || strings.ContainsAny(hint, `/\.`) {
		hint = "bin"
	}
	return "input." + hint
}
