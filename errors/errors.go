package errors

import "fmt"

// AppError is the error type that crosses package and HTTP boundaries.
// Cause is kept for logs and errors.Is but never sent to clients.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any AppError with the same code, so callers can write
// errors.Is(err, errors.AudioDecode("", nil)).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError whose status and retryability come from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Retryable:  code.Retryable(),
		HTTPStatus: code.HTTPStatus(),
	}
}

// AudioDecode is returned for input that could not be turned into a
// canonical waveform.
func AudioDecode(reason string, cause error) *AppError {
	if reason == "" {
		reason = "audio could not be decoded"
	}
	return New(ErrCodeAudioDecode, "Unable to decode audio: "+reason).WithCause(cause)
}

// ClassificationUnavailable is returned when the model is missing, corrupt
// or the wrong shape.
func ClassificationUnavailable(reason string, cause error) *AppError {
	return New(ErrCodeClassificationUnavailable, "Classification unavailable: "+reason).WithCause(cause)
}

// FeatureDegraded describes a sub-feature that fell back to its default.
func FeatureDegraded(feature string, cause error) *AppError {
	return New(ErrCodeFeatureDegraded, fmt.Sprintf("Feature %s degraded to default", feature)).
		WithCause(cause).
		WithDetail("feature", feature)
}

func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service)).
		WithDetail("service", service)
}

func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.").
		WithDetail("operation", operation)
}

func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please slow down.")
}

// InvalidInput reports a bad request field. An empty field is omitted
// from the details.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation carries an already formatted list of field failures.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field).WithDetail("field", field)
}

func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, fmt.Sprintf("Payload exceeds the %d byte limit", limit)).
		WithDetail("limit", limit)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").WithCause(cause)
}
