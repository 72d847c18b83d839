package repository

import (
	"context"
	"errors"
	"strings"

	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	collectionAccounts = "users"
	collectionPosts    = "posts"
	collectionComments = "comments"
)

type sqlBackend struct {
	db *gorm.DB
}

func (b *sqlBackend) Name() string { return b.db.Dialector.Name() }

func (b *sqlBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *sqlBackend) Close(_ context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewSQLStore builds a Store on a migrated gorm connection.
func NewSQLStore(db *gorm.DB) *Store {
	return &Store{
		Accounts: NewAccountRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Backend:  &sqlBackend{db: db},
	}
}

// Observe opens a span and a latency timer around one store call.
// The returned func must be called with the call's final error.
func Observe(ctx context.Context, system, operation, collection string) (context.Context, func(error)) {
	ctx, span := observability.StartStoreSpan(ctx, system, operation, collection)
	done := observability.TrackQuery(operation, collection)
	return ctx, func(err error) {
		done()
		if models.IsCode(err, models.CodeNotFound) {
			err = nil
		}
		observability.EndSpan(span, err)
	}
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// substringCondition returns a case-sensitive literal substring predicate for the dialect.
func substringCondition(db *gorm.DB, column string) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "instr(" + column + ", ?) > 0"
	case "mysql":
		return "LOCATE(BINARY ?, " + column + ") > 0"
	default:
		return "strpos(" + column + ", ?) > 0"
	}
}
