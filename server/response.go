package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
)

// DataResponse wraps successful non-screening payloads such as batch results.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as an error envelope carrying the request ID.
// Errors that are not AppErrors become a 500 without leaking their text.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Resolve(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse(logger.RequestIDFromContext(c.Request.Context())))
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
