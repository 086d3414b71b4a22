package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"
)

// pcm is decoded, interleaved-free audio before canonicalization.
type pcm struct {
	channels [][]float64
	rate     int
}

// decodeWAV reads a PCM WAV stream into per-channel float samples in [-1, 1].
func decodeWAV(r io.ReadSeeker) (*pcm, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading pcm: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, errors.New("wav has no format chunk")
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}

func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) (*pcm, error) {
	nch := buf.Format.NumChannels
	if nch <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", nch)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", buf.Format.SampleRate)
	}
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	// 8-bit WAV is unsigned.
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / nch
	out := make([][]float64, nch)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			out[c][i] = (float64(buf.Data[i*nch+c]) - offset) / scale
		}
	}
	return &pcm{channels: out, rate: buf.Format.SampleRate}, nil
}

// mono averages all channels.
func (p *pcm) mono() []float64 {
	if len(p.channels) == 1 {
		return p.channels[0]
	}
	n := len(p.channels[0])
	out := make([]float64, n)
	for _, ch := range p.channels {
		for i, v := range ch {
			out[i] += v
		}
	}
	inv := 1 / float64(len(p.channels))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// resample converts a mono signal between rates.
func resample(samples []float64, from, to int) ([]float64, error) {
	if from == to {
		return samples, nil
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}
	out, err := r.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resampling %d→%d Hz: %w", from, to, err)
	}
	return out, nil
}
