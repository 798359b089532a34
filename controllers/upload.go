package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"go-storefront/apperrors"
	"go-storefront/media"
)

// UploadController forwards images to the configured image store
type UploadController struct {
	uploader media.Uploader
	logger   *slog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(uploader media.Uploader, logger *slog.Logger) *UploadController {
	return &UploadController{uploader: uploader, logger: logger}
}

type uploadRequest struct {
	Image string `json:"image"`
}

// UploadImage stores a data URI or remote URL and returns its public URL.
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, r, uc.logger, apperrors.Validation("image is required"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	url, err := uc.uploader.Upload(ctx, req.Image)
	if err != nil {
		writeError(w, r, uc.logger, apperrors.Upstream(uc.uploader.Name(), err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
