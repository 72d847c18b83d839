// Package repository provides the entity store: typed CRUD per record type,
// read-time hydration of references, and the relational backend.
package repository

import (
	"context"

	"postboard/internal/models"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// GetByEmail returns nil, nil when no account has the email.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByUsername returns nil, nil when no account has the handle.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	UpdateByEmail(ctx context.Context, email string, update models.AccountUpdate) (*models.Account, error)
}

// PostRepository defines persistence operations for posts.
// Lists are ordered newest first.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, accountID string) ([]*models.Post, error)
	// Search matches query as a literal, case-sensitive substring of the content.
	Search(ctx context.Context, query string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and returns the record as it was stored.
	Delete(ctx context.Context, id string) (*models.Post, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

// CommentRepository defines persistence operations for comments.
// Lists are ordered newest first.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	List(ctx context.Context) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	// Delete removes the comment and returns the record as it was stored.
	Delete(ctx context.Context, id string) (*models.Comment, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// Backend is the connection underneath a Store.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Accounts AccountRepository
	Posts    PostRepository
	Comments CommentRepository
	Backend  Backend
}
