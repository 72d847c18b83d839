package service

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx, ada := f.register(t, "ada", "a@x.com")
	post := f.seedPost(t, ada, "hello", 0)

	for _, text := range []string{"", "   ", "\t"} {
		_, err := f.comments.Create(ctx, CreateCommentInput{PostID: post.ID, Comment: text})
		assertValidationError(t, err)
		assert.Equal(t, "Comment is required!", models.AsAppError(err).Message)
	}

	_, err := f.comments.Create(f.as("stranger@x.com"), CreateCommentInput{PostID: post.ID, Comment: "hi"})
	assertCode(t, err, models.CodeUnauthenticated)
	assert.Equal(t, "Please login to comment!", models.AsAppError(err).Message)
}

func TestCommentService_CreateOnMissingPost(t *testing.T) {
	f := newFixture(t)
	added := f.subscribe(t, notifications.TopicCommentAdded)
	ctx, _ := f.register(t, "ada", "a@x.com")

	_, err := f.comments.Create(ctx, CreateCommentInput{PostID: "does-not-exist", Comment: "hi"})
	assertCode(t, err, models.CodeNotFound)
	assertNoEvent(t, added)

	all, err := f.store.Comments.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCommentService_CreatePublishesFullyHydratedComment(t *testing.T) {
	f := newFixture(t)
	added := f.subscribe(t, notifications.TopicCommentAdded)
	_, ada := f.register(t, "ada", "a@x.com")
	bobCtx, bob := f.register(t, "bob", "b@x.com")
	post := f.seedPost(t, ada, "hello", 0)

	comment, err := f.comments.Create(bobCtx, CreateCommentInput{PostID: post.ID, Comment: "nice"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, comment.PostedByID)
	require.NotNil(t, comment.PostedBy)
	assert.Equal(t, "b@x.com", comment.PostedBy.Email)
	require.NotNil(t, comment.Post)
	assert.Equal(t, post.ID, comment.Post.ID)
	require.NotNil(t, comment.Post.PostedBy)
	assert.Equal(t, "ada", comment.Post.PostedBy.Username)

	ev := receive(t, added)
	assert.Equal(t, comment.ID, ev.Comment.ID)
}

func TestCommentService_Reads(t *testing.T) {
	f := newFixture(t)
	adaCtx, ada := f.register(t, "ada", "a@x.com")
	post := f.seedPost(t, ada, "hello", 0)
	other := f.seedPost(t, ada, "other", time.Minute)

	first, err := f.comments.Create(adaCtx, CreateCommentInput{PostID: post.ID, Comment: "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := f.comments.Create(adaCtx, CreateCommentInput{PostID: post.ID, Comment: "second"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = f.comments.Create(adaCtx, CreateCommentInput{PostID: other.ID, Comment: "elsewhere"})
	require.NoError(t, err)

	byPost, err := f.comments.CommentsByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, byPost, 2)
	assert.Equal(t, second.ID, byPost[0].ID)
	assert.Equal(t, first.ID, byPost[1].ID)
	assert.Equal(t, "ada", byPost[0].Post.PostedBy.Username)

	_, err = f.comments.CommentsByPost(context.Background(), "missing")
	assertCode(t, err, models.CodeNotFound)

	n, err := f.comments.TotalCommentsPerPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.comments.TotalCommentsPerPost(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := f.comments.AllComments(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "elsewhere", all[0].Comment)
}

func TestCommentService_UpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	updated := f.subscribe(t, notifications.TopicCommentUpdated)
	deleted := f.subscribe(t, notifications.TopicCommentDeleted)
	adaCtx, ada := f.register(t, "ada", "a@x.com")
	bobCtx, _ := f.register(t, "bob", "b@x.com")
	post := f.seedPost(t, ada, "hello", 0)

	comment, err := f.comments.Create(adaCtx, CreateCommentInput{PostID: post.ID, Comment: "mine"})
	require.NoError(t, err)

	_, err = f.comments.Update(bobCtx, UpdateCommentInput{ID: comment.ID, Comment: "theirs"})
	assertForbiddenError(t, err)
	_, err = f.comments.Delete(bobCtx, comment.ID)
	assertForbiddenError(t, err)
	assertNoEvent(t, updated)
	assertNoEvent(t, deleted)

	_, err = f.comments.Update(adaCtx, UpdateCommentInput{ID: comment.ID, Comment: " "})
	assertValidationError(t, err)

	got, err := f.comments.Update(adaCtx, UpdateCommentInput{ID: comment.ID, Comment: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Comment)
	assert.Equal(t, post.ID, got.Post.ID)
	assert.Equal(t, comment.ID, receive(t, updated).Comment.ID)

	snapshot, err := f.comments.Delete(adaCtx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", snapshot.Comment)
	assert.Equal(t, "ada", snapshot.PostedBy.Username)
	assert.Equal(t, comment.ID, receive(t, deleted).Comment.ID)

	_, err = f.comments.Delete(adaCtx, comment.ID)
	assertCode(t, err, models.CodeNotFound)
}
