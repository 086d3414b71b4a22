package errors

import stderrors "errors"

// ErrorResponse is the JSON error envelope returned by the HTTP boundary.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. The cause stays
// server-side.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Body returns the client-visible fields of e.
func (e *AppError) Body() ErrorBody {
	return ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
}

// ToResponse wraps Body in the envelope, tagged with requestID when set.
func (e *AppError) ToResponse(requestID ...string) ErrorResponse {
	body := e.Body()
	if len(requestID) > 0 {
		body.RequestID = requestID[0]
	}
	return ErrorResponse{Error: body}
}

// Resolve returns the AppError in err's chain, or wraps err as
// INTERNAL_ERROR.
func Resolve(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// IsAppError reports whether err's chain contains an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
