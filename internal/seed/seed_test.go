package seed

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewSQLStore(testutil.NewSQLiteDB(t))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	sum, err := Run(ctx, store, Options{Accounts: 3, PostsPerAccount: 2, CommentsPerPost: 2, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, Summary{Accounts: 3, Posts: 6, Comments: 12}, sum)

	accounts, err := store.Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for _, a := range accounts {
		assert.NotEmpty(t, a.Username)
		assert.Contains(t, a.Email, "@")
	}

	total, err := store.Posts.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	posts, err := store.Posts.List(ctx, 10, 0)
	require.NoError(t, err)
	for _, p := range posts {
		n, err := store.Comments.CountByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		assert.NotEmpty(t, p.Image.URL)
	}
}

func TestRun_Clean(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := Run(ctx, store, Options{Accounts: 2, PostsPerAccount: 3, CommentsPerPost: 1})
	require.NoError(t, err)

	sum, err := Run(ctx, store, Options{Accounts: 1, PostsPerAccount: 1, Clean: true})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.PostsRemoved)

	total, err := store.Posts.EstimatedCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	comments, err := store.Comments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	sum, err := Run(ctx, store, Options{Accounts: 2, PostsPerAccount: 2, CommentsPerPost: 1, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Posts)

	accounts, err := store.Accounts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestRun_RequiresAccounts(t *testing.T) {
	_, err := Run(context.Background(), newStore(t), Options{})
	assert.Error(t, err)
}

func TestFactory_Overrides(t *testing.T) {
	f := NewFactory(nil, Options{RandSeed: 7})
	owner := f.BuildAccount(func(a *models.Account) { a.ID = "owner" })

	post := f.BuildPost(owner, func(p *models.Post) { p.Content = "fixed" })
	assert.Equal(t, "fixed", post.Content)
	assert.Equal(t, "owner", post.PostedByID)
	assert.WithinDuration(t, time.Now(), post.CreatedAt, 90*24*time.Hour)

	post.ID = "post"
	comment := f.BuildComment(post, owner)
	assert.Equal(t, "post", comment.PostID)
	assert.False(t, comment.CreatedAt.Before(post.CreatedAt))
	assert.False(t, comment.CreatedAt.After(time.Now()))
}
