package repository

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func setupStore(t *testing.T) *Store {
	return NewSQLStore(testutil.NewSQLiteDB(t))
}

func seedAccount(t *testing.T, s *Store, username, email string) *models.Account {
	account := &models.Account{Username: username, Name: username, Email: email}
	require.NoError(t, s.Accounts.Create(context.Background(), account))
	return account
}

// seedPost stores a post created at base+offset so list order is deterministic.
func seedPost(t *testing.T, s *Store, owner *models.Account, content string, offset time.Duration) *models.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	post := &models.Post{
		Content:    content,
		PostedByID: owner.ID,
		CreatedAt:  base.Add(offset),
	}
	require.NoError(t, s.Posts.Create(context.Background(), post))
	return post
}

func seedComment(t *testing.T, s *Store, owner *models.Account, post *models.Post, text string, offset time.Duration) *models.Comment {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	comment := &models.Comment{
		Comment:    text,
		PostID:     post.ID,
		PostedByID: owner.ID,
		CreatedAt:  base.Add(offset),
	}
	require.NoError(t, s.Comments.Create(context.Background(), comment))
	return comment
}
