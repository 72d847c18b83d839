package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func newTestStore(t *testing.T, handler http.HandlerFunc) *CloudinaryStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewCloudinaryStore("demo", "key", "secret", WithUploadPrefix(srv.URL))
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestCloudinaryStore_Upload(t *testing.T) {
	var path string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1700000000123", r.PostForm.Get("public_id"))
		assert.Equal(t, pixel, r.PostForm.Get("file"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"1700000000123","secure_url":"https://res.example.com/1700000000123.png"}`))
	})

	img, err := s.Upload(context.Background(), pixel)
	require.NoError(t, err)
	assert.Equal(t, "1700000000123", img.PublicID)
	assert.Equal(t, "https://res.example.com/1700000000123.png", img.URL)
	assert.True(t, strings.HasSuffix(path, "/demo/auto/upload"), path)
}

func TestCloudinaryStore_UploadHostError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	})

	_, err := s.Upload(context.Background(), pixel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinaryStore_Remove(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"removed", `{"result":"ok"}`, ""},
		{"unknown id", `{"result":"not found"}`, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasSuffix(r.URL.Path, "/destroy"), r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			err := s.Remove(context.Background(), "1700000000123")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewCloudinaryStore_UploadPrefix(t *testing.T) {
	s, err := NewCloudinaryStore("demo", "key", "secret", WithUploadPrefix("http://127.0.0.1:9"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9", s.cld.Upload.Config.API.UploadPrefix)

	s, err = NewCloudinaryStore("demo", "key", "secret", WithUploadPrefix(""))
	require.NoError(t, err)
	assert.Equal(t, "https://api.cloudinary.com", s.cld.Upload.Config.API.UploadPrefix)
}

func TestNewStore_Unconfigured(t *testing.T) {
	s, err := NewStore(&config.Config{})
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), pixel)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.Remove(context.Background(), "x"), ErrNotConfigured)
}
