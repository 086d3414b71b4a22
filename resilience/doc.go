// Package resilience provides the fault-isolation primitives used around the
// external transcoder and the HTTP boundary.
//
//   - Bulkhead caps concurrent transcoder processes.
//   - CircuitBreaker fails fast when the transcoder itself is broken
//     (missing binary, repeated timeouts) and ignores per-input decode errors.
//   - RateLimiter is the token bucket behind the HTTP rate limit middleware.
//
// Screening never retries: a failed normalization is reported to the caller.
package resilience
