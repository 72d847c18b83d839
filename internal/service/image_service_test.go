package service

import (
	"context"
	"errors"
	"testing"

	"postboard/internal/media"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mediaStoreStub is a stub for media.Store.
type mediaStoreStub struct {
	uploadFn func(context.Context, string) (models.Image, error)
	removeFn func(context.Context, string) error
}

func (s *mediaStoreStub) Upload(ctx context.Context, file string) (models.Image, error) {
	return s.uploadFn(ctx, file)
}

func (s *mediaStoreStub) Remove(ctx context.Context, publicID string) error {
	return s.removeFn(ctx, publicID)
}

func TestImageService_Upload(t *testing.T) {
	t.Parallel()

	stored := models.Image{URL: "https://res.example.com/1.png", PublicID: "1"}
	svc := NewImageService(&mediaStoreStub{
		uploadFn: func(_ context.Context, file string) (models.Image, error) {
			if file == "data:broken" {
				return models.Image{}, errors.New("Invalid image file")
			}
			return stored, nil
		},
	})

	t.Run("empty image", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Upload(context.Background(), " ")
		assertValidationError(t, err)
	})

	t.Run("host failure hides cause", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Upload(context.Background(), "data:broken")
		assertCode(t, err, models.CodeInternal)
		assert.Equal(t, "Image upload failed", models.AsAppError(err).Message)
	})

	t.Run("stored", func(t *testing.T) {
		t.Parallel()
		img, err := svc.Upload(context.Background(), "data:image/png;base64,AAAA")
		require.NoError(t, err)
		assert.Equal(t, stored, img)
	})
}

func TestImageService_Remove(t *testing.T) {
	t.Parallel()

	var removed []string
	svc := NewImageService(&mediaStoreStub{
		removeFn: func(_ context.Context, id string) error {
			removed = append(removed, id)
			return nil
		},
	})

	assertValidationError(t, svc.Remove(context.Background(), ""))
	require.NoError(t, svc.Remove(context.Background(), "1700000000123"))
	assert.Equal(t, []string{"1700000000123"}, removed)
}

func TestImageService_Unconfigured(t *testing.T) {
	t.Parallel()

	store, err := media.NewStore(nil)
	require.NoError(t, err)
	svc := NewImageService(store)

	err = svc.Remove(context.Background(), "1")
	assertCode(t, err, models.CodeInternal)
	assert.ErrorIs(t, err, media.ErrNotConfigured)
}
