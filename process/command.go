package process

import "time"

// Command is one subprocess invocation with an explicit argv. Nothing is
// passed through a shell.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory, typically the per-request work dir.
	Dir string
	// GracePeriod is the wait between SIGTERM and SIGKILL on cancellation.
	// Zero means 5s.
	GracePeriod time.Duration
	// MaxOutput caps the bytes kept from each of stdout and stderr. Zero
	// means 64 KiB; the rest is discarded.
	MaxOutput int
}

// cappedBuffer keeps the first max bytes written and drops the rest while
// still reporting full writes, so a chatty process never blocks.
type cappedBuffer struct {
	buf []byte
	max int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - len(b.buf); room > 0 {
		b.buf = append(b.buf, p[:min(room, len(p))]...)
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte { return b.buf }

func (b *cappedBuffer) String() string { return string(b.buf) }
