package process

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	Duration time.Duration
}

var (
	// ErrBinaryNotFound is returned when the executable cannot be resolved.
	ErrBinaryNotFound = errors.New("process: binary not found")
	// ErrKilled is returned when the context ends before the process exits.
	ErrKilled = errors.New("process: killed by context")
)

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		return fmt.Sprintf("process: exit code %d", e.Code)
	}
	return fmt.Sprintf("process: exit code %d: %s", e.Code, msg)
}

// IsInfrastructure reports whether err means the process could not be run
// to completion at all, as opposed to running and rejecting its input.
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *ExitError
	return !errors.As(err, &exitErr)
}
