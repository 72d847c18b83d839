package service

import (
	"context"
	"errors"
	"log/slog"

	"postboard/internal/media"
	"postboard/internal/models"
	"postboard/internal/observability"
)

// ImageService forwards image uploads and removals to the media host.
type ImageService struct {
	store media.Store
}

func NewImageService(store media.Store) *ImageService {
	return &ImageService{store: store}
}

// Upload stores image, a data URI or remote URL, and returns its location.
func (s *ImageService) Upload(ctx context.Context, image string) (img models.Image, err error) {
	ctx, done := observe(ctx, "image", "upload")
	defer func() { done(err) }()

	if isBlank(image) {
		return models.Image{}, models.NewValidationError("Image is required")
	}
	img, err = s.store.Upload(ctx, image)
	if err != nil {
		return models.Image{}, mediaError(ctx, err, "upload")
	}
	return img, nil
}

func (s *ImageService) Remove(ctx context.Context, publicID string) (err error) {
	ctx, done := observe(ctx, "image", "remove")
	defer func() { done(err) }()

	if isBlank(publicID) {
		return models.NewValidationError("public_id is required")
	}
	if err := s.store.Remove(ctx, publicID); err != nil {
		return mediaError(ctx, err, "remove")
	}
	return nil
}

func mediaError(ctx context.Context, err error, operation string) error {
	observability.Logger.ErrorContext(ctx, "media host call failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, media.ErrNotConfigured) {
		return models.NewUpstreamError("Image storage is not configured", err)
	}
	return models.NewUpstreamError("Image "+operation+" failed", err)
}
