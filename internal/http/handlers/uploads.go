package handlers

import (
	"fmt"
	"io"
	"net/http"

	"storefront-api/internal/utils"
	"storefront-api/pkg/response"

	"github.com/google/uuid"
)

const (
	productImageMaxSide = 1600
	productImageQuality = 82
	thumbnailSize       = 400
	thumbnailQuality    = 80
)

// ProductImageUpload normalizes the uploaded image (EXIF orientation,
// resize, JPEG re-encode) and stores full size plus thumbnail under a
// fresh key, so originals are never served directly.
func (h *Handler) ProductImageUpload(w http.ResponseWriter, r *http.Request) {
	if h.Objects == nil {
		response.Error(w, http.StatusServiceUnavailable, "uploads_disabled", "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxFileSizeBytes)
	if err := r.ParseMultipartForm(h.Config.MaxFileSizeBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "file_too_large", "uploaded file exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "missing_file", "image file is required")
		return
	}
	defer file.Close()

	if !utils.ValidateImageContentType(header.Header.Get("Content-Type")) {
		response.Error(w, http.StatusBadRequest, "unsupported_type", "unsupported image type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Error("upload read failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to read upload")
		return
	}

	normalized, err := utils.NormalizeProductImage(data, productImageMaxSide, productImageQuality)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_image", "could not decode image")
		return
	}
	thumbnail, err := utils.ProductThumbnail(data, thumbnailSize, thumbnailQuality)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid_image", "could not decode image")
		return
	}

	id := uuid.NewString()
	imageKey := fmt.Sprintf("products/%s.jpg", id)
	thumbKey := fmt.Sprintf("products/%s_thumb.jpg", id)

	ctx := r.Context()
	imageURL, err := h.Objects.PutObject(ctx, imageKey, normalized, "image/jpeg")
	if err != nil {
		h.Logger.Error("upload store failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to store image")
		return
	}
	thumbURL, err := h.Objects.PutObject(ctx, thumbKey, thumbnail, "image/jpeg")
	if err != nil {
		// Roll back the full-size object so the bucket never holds a
		// half-uploaded pair.
		_ = h.Objects.DeleteKey(ctx, imageKey)
		h.Logger.Error("upload thumbnail store failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", "failed to store image")
		return
	}

	response.Created(w, map[string]string{
		"image":     imageURL,
		"thumbnail": thumbURL,
	})
}
