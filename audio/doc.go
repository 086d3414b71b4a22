// Package audio normalizes arbitrary recorded audio into the canonical
// waveform used by feature extraction: mono, 16 kHz, float64 samples in
// [-1, 1], at least MinSamples long.
//
// Decoding is delegated to an external transcoder (ffmpeg) run through
// process.Runner with a bulkhead and a circuit breaker. The transcoder's
// WAV output is decoded with go-audio/wav and, if the transcoder did not
// honor the requested format, downmixed and resampled in-process.
//
//	tc, _ := audio.NewFFmpeg(cfg.Transcoder, log, metrics)
//	n := audio.NewNormalizer(cfg.Audio, tc, log)
//	wf, err := n.Normalize(ctx, audio.Blob{Data: raw, Hint: "webm"})
package audio
