// Package errors provides the structured error type shared by the screening
// pipeline and its HTTP boundary: machine-readable codes, HTTP status mapping,
// retryable detection, and an RFC 7807 style response envelope.
package errors
