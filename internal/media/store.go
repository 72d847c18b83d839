// Package media stores post and profile images on the external media host.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"postboard/internal/config"
	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
)

// ErrNotConfigured is returned by every operation when no media host credentials are set.
var ErrNotConfigured = errors.New("media: host not configured")

// Store uploads and removes images on the media host.
type Store interface {
	// Upload accepts a data URI or a remote URL and returns the stored image.
	Upload(ctx context.Context, file string) (models.Image, error)
	Remove(ctx context.Context, publicID string) error
}

// NewStore returns a Cloudinary-backed store, or a store that always fails
// with ErrNotConfigured when credentials are missing.
func NewStore(cfg *config.Config) (Store, error) {
	if cfg == nil || !cfg.MediaConfigured() {
		observability.Logger.Warn("media host credentials missing, image endpoints disabled")
		return unconfigured{}, nil
	}
	store, err := NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
		WithUploadPrefix(cfg.CloudinaryUploadPrefix))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// CloudinaryStore implements Store on top of the Cloudinary upload API.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

// Option adjusts the Cloudinary configuration before the client is built.
type Option func(*cldconfig.Configuration)

// WithUploadPrefix points the upload API at prefix, such as a regional host.
// An empty prefix keeps the default host.
func WithUploadPrefix(prefix string) Option {
	return func(c *cldconfig.Configuration) {
		if prefix != "" {
			c.API.UploadPrefix = prefix
		}
	}
}

// NewCloudinaryStore creates a CloudinaryStore for the given account.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string, opts ...Option) (*CloudinaryStore, error) {
	conf, err := cldconfig.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	for _, opt := range opts {
		opt(conf)
	}
	// The client copies conf into each API, so options must apply first.
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, now: time.Now}, nil
}

// Upload stores file under a public id derived from the current time in milliseconds.
func (s *CloudinaryStore) Upload(ctx context.Context, file string) (models.Image, error) {
	publicID := strconv.FormatInt(s.now().UnixMilli(), 10)

	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return models.Image{}, fmt.Errorf("upload image: %s", res.Error.Message)
	}

	observability.Logger.InfoContext(ctx, "image uploaded", slog.String("public_id", res.PublicID))
	return models.Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Remove destroys the image stored under publicID.
func (s *CloudinaryStore) Remove(ctx context.Context, publicID string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("remove image: %s", res.Error.Message)
	}
	if res.Result != "ok" {
		return fmt.Errorf("remove image: %s", res.Result)
	}
	return nil
}

type unconfigured struct{}

func (unconfigured) Upload(context.Context, string) (models.Image, error) {
	return models.Image{}, ErrNotConfigured
}

func (unconfigured) Remove(context.Context, string) error {
	return ErrNotConfigured
}
