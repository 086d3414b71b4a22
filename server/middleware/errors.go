package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
)

// writeError writes an AppError envelope outside of Gin. The request ID
// comes from the context, or from the response header when the error is
// written by middleware outside RequestID.
func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	id := logger.RequestIDFromContext(r.Context())
	if id == "" {
		id = w.Header().Get(HeaderRequestID)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(err.ToResponse(id))
}
