package repository

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Lifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	ada := seedAccount(t, s, "ada", "ada@example.com")
	bob := seedAccount(t, s, "bob", "bob@example.com")
	post := seedPost(t, s, ada, "hello", 0)
	other := seedPost(t, s, ada, "other", time.Minute)

	first := seedComment(t, s, bob, post, "first", 0)
	seedComment(t, s, ada, post, "second", time.Minute)
	seedComment(t, s, bob, other, "elsewhere", 2*time.Minute)

	list, err := s.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Comment)
	assert.Equal(t, "first", list[1].Comment)

	all, err := s.Comments.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "elsewhere", all[0].Comment)

	count, err := s.Comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	first.Comment = "edited"
	require.NoError(t, s.Comments.Update(ctx, first))
	got, err := s.Comments.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Comment)
	assert.Equal(t, post.ID, got.PostID)

	err = s.Comments.Update(ctx, &models.Comment{ID: "missing", Comment: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	deleted, err := s.Comments.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", deleted.Comment)

	_, err = s.Comments.GetByID(ctx, first.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	removed, err := s.Comments.DeleteByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	count, err = s.Comments.CountByPost(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
