package errors

import "net/http"

// ErrorCode is the machine-readable part of an AppError.
type ErrorCode string

const (
	// ErrCodeAudioDecode means the input could not be normalized to a
	// waveform. It is the only error that aborts a screening.
	ErrCodeAudioDecode ErrorCode = "AUDIO_DECODE_ERROR"
	// ErrCodeClassificationUnavailable means the model could not be evaluated.
	ErrCodeClassificationUnavailable ErrorCode = "CLASSIFICATION_UNAVAILABLE"
	// ErrCodeFeatureDegraded means a sub-feature fell back to its default.
	ErrCodeFeatureDegraded ErrorCode = "FEATURE_DEGRADED"

	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

var codeTable = map[ErrorCode]codeInfo{
	ErrCodeAudioDecode:               {http.StatusUnprocessableEntity, false},
	ErrCodeClassificationUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeFeatureDegraded:           {http.StatusOK, false},
	ErrCodeServiceUnavailable:        {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:                   {http.StatusGatewayTimeout, true},
	ErrCodeRateLimited:               {http.StatusTooManyRequests, true},
	ErrCodeInvalidInput:              {http.StatusBadRequest, false},
	ErrCodeMissingField:              {http.StatusBadRequest, false},
	ErrCodePayloadTooLarge:           {http.StatusRequestEntityTooLarge, false},
	ErrCodeInternal:                  {http.StatusInternalServerError, false},
}

// HTTPStatus is the status the HTTP boundary answers with. Unknown codes
// map to 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codeTable[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the same request may succeed later.
func (c ErrorCode) Retryable() bool { return codeTable[c].retryable }
