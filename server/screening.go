package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescreen/audio"
	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/screening"
)

// FormFieldAudio is the multipart field carrying the recording.
const FormFieldAudio = "audio"

// Screener runs screenings.
type Screener interface {
	Run(ctx context.Context, blob audio.Blob) (screening.Result, error)
	Batch(ctx context.Context, items []screening.Item) ([]screening.Outcome, error)
}

// ScreeningHandler serves the screening routes.
type ScreeningHandler struct {
	screener Screener
	maxFiles int
	log      *logger.Logger
}

// NewScreeningHandler creates a handler. maxFiles bounds batch uploads.
func NewScreeningHandler(s Screener, maxFiles int, log *logger.Logger) *ScreeningHandler {
	if maxFiles <= 0 {
		maxFiles = 16
	}
	return &ScreeningHandler{screener: s, maxFiles: maxFiles, log: log.WithComponent("server")}
}

// Register mounts the screening routes on r.
func (h *ScreeningHandler) Register(r gin.IRouter) {
	r.POST("/parkinson", h.Screen)
	v1 := r.Group("/api/v1/screenings")
	v1.POST("/voice", h.Screen)
	v1.POST("/batch", h.Batch)
}

// Screen handles a single upload.
func (h *ScreeningHandler) Screen(c *gin.Context) {
	fh, err := c.FormFile(FormFieldAudio)
	if err != nil {
		RespondWithError(c, uploadError(err))
		return
	}
	blob, err := readUpload(fh)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	res, err := h.screener.Run(c.Request.Context(), blob)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, screening.NewResponse(res))
}

// BatchEntry is one file's outcome in a batch response.
type BatchEntry struct {
	File string `json:"file"`
	*screening.Response
	Error *apperrors.ErrorBody `json:"error,omitempty"`
}

// Batch handles several uploads under the same field.
func (h *ScreeningHandler) Batch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondWithError(c, uploadError(err))
		return
	}
	files := form.File[FormFieldAudio]
	switch {
	case len(files) == 0:
		RespondWithError(c, apperrors.MissingField(FormFieldAudio))
		return
	case len(files) > h.maxFiles:
		RespondWithError(c, apperrors.InvalidInput(FormFieldAudio, fmt.Sprintf("at most %d files per batch", h.maxFiles)))
		return
	}

	items := make([]screening.Item, 0, len(files))
	for _, fh := range files {
		blob, err := readUpload(fh)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		items = append(items, screening.Item{Name: fh.Filename, Blob: blob})
	}

	outcomes, err := h.screener.Batch(c.Request.Context(), items)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	entries := make([]BatchEntry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = BatchEntry{File: o.Name}
		if o.Err != nil {
			body := apperrors.Resolve(o.Err).Body()
			entries[i].Error = &body
			continue
		}
		resp := screening.NewResponse(o.Result)
		entries[i].Response = &resp
	}
	RespondOK(c, entries)
}

func readUpload(fh *multipart.FileHeader) (audio.Blob, error) {
	if strings.TrimSpace(fh.Filename) == "" {
		return audio.Blob{}, apperrors.InvalidInput(FormFieldAudio, "invalid audio file")
	}
	f, err := fh.Open()
	if err != nil {
		return audio.Blob{}, apperrors.InvalidInput(FormFieldAudio, "unreadable upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return audio.Blob{}, apperrors.InvalidInput(FormFieldAudio, "unreadable upload")
	}
	return audio.Blob{Data: data, Hint: audio.HintFromFilename(fh.Filename)}, nil
}

func uploadError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.PayloadTooLarge(maxErr.Limit)
	}
	if errors.Is(err, http.ErrMissingFile) {
		return apperrors.MissingField(FormFieldAudio)
	}
	return apperrors.InvalidInput(FormFieldAudio, "expected multipart form with an audio file")
}
