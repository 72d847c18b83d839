// Package bootstrap connects the runtime dependencies selected by the config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/identity"
	"postboard/internal/media"
	"postboard/internal/repository"
	"postboard/internal/repository/mongostore"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// Runtime holds the connected dependencies shared by the server and the seeder.
type Runtime struct {
	Store    *repository.Store
	Redis    *redis.Client
	Verifier identity.Verifier
	Media    media.Store
}

// InitRuntime connects the entity store and Redis, and builds the identity
// verifier and media store. Redis is optional; a nil client disables caching
// and rate limiting.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("entity store connection failed: %w", err)
	}

	verifier, err := NewVerifier(ctx, cfg)
	if err != nil {
		_ = store.Backend.Close(ctx)
		return nil, fmt.Errorf("identity provider setup failed: %w", err)
	}

	mediaStore, err := media.NewStore(cfg)
	if err != nil {
		_ = store.Backend.Close(ctx)
		return nil, fmt.Errorf("media store setup failed: %w", err)
	}

	return &Runtime{
		Store:    store,
		Redis:    cache.Connect(ctx, cfg.RedisURL, redisDialTimeout),
		Verifier: verifier,
		Media:    mediaStore,
	}, nil
}

// OpenStore connects the backend named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := mongostore.New(ctx, db)
		if err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, err
		}
		return store, nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.ConnectSQL(cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewVerifier builds the token verifier named by cfg.AuthProvider.
func NewVerifier(ctx context.Context, cfg *config.Config) (identity.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		v, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.AuthJWT:
		return identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}

// Close releases the store and Redis connections.
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if r.Store != nil && r.Store.Backend != nil {
		if err := r.Store.Backend.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
