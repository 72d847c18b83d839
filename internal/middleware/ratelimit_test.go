package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "upload", "uid:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "upload", "uid:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "upload", "uid:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "counters are per caller")

	assert.Equal(t, time.Minute, mr.TTL("rl:upload:uid:1"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "upload", "uid:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window expired")
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Parallel()
	allowed, err := CheckRateLimit(context.Background(), nil, "upload", "ip:1", 1, time.Minute)
	assert.ErrorIs(t, err, errNoRedis)
	assert.False(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	get := func(t *testing.T, app *fiber.App) int {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}
	newApp := func(rdb *redis.Client, cfg RateLimitConfig) *fiber.App {
		app := fiber.New()
		app.Get("/limited", RateLimit(rdb, cfg), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	t.Run("limits after threshold", func(t *testing.T) {
		t.Parallel()
		_, rdb := newRedis(t)
		app := newApp(rdb, RateLimitConfig{Resource: "images", Limit: 1, Window: time.Minute})

		assert.Equal(t, http.StatusOK, get(t, app))
		assert.Equal(t, http.StatusTooManyRequests, get(t, app))
	})

	t.Run("disabled lets everything through", func(t *testing.T) {
		t.Parallel()
		app := newApp(nil, RateLimitConfig{Limit: 1, Window: time.Minute, Disabled: true})

		assert.Equal(t, http.StatusOK, get(t, app))
		assert.Equal(t, http.StatusOK, get(t, app))
	})

	t.Run("fail open without redis", func(t *testing.T) {
		t.Parallel()
		app := newApp(nil, RateLimitConfig{Limit: 1, Window: time.Minute})
		assert.Equal(t, http.StatusOK, get(t, app))
	})

	t.Run("fail closed without redis", func(t *testing.T) {
		t.Parallel()
		app := newApp(nil, RateLimitConfig{Limit: 1, Window: time.Minute, Policy: FailClosed})
		assert.Equal(t, http.StatusServiceUnavailable, get(t, app))
	})

	t.Run("fail closed when redis goes away", func(t *testing.T) {
		t.Parallel()
		mr, rdb := newRedis(t)
		app := newApp(rdb, RateLimitConfig{Limit: 5, Window: time.Minute, Policy: FailClosed})
		mr.Close()
		assert.Equal(t, http.StatusServiceUnavailable, get(t, app))
	})
}
