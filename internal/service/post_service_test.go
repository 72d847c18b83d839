package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page int
		want int
	}{
		{-3, 0},
		{0, 0},
		{1, 0},
		{2, 6},
		{5, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageOffset(tt.page), "page %d", tt.page)
	}
}

func TestPostService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.register(t, "ada", "a@x.com")

	for _, content := range []string{"", " ", "\n\t "} {
		t.Run(fmt.Sprintf("%q", content), func(t *testing.T) {
			_, err := f.posts.Create(ctx, CreatePostInput{Content: content})
			assertValidationError(t, err)
			assert.Equal(t, "Content is required!", models.AsAppError(err).Message)
		})
	}

	t.Run("validation precedes authentication", func(t *testing.T) {
		_, err := f.posts.Create(context.Background(), CreatePostInput{Content: ""})
		assertValidationError(t, err)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.posts.Create(context.Background(), CreatePostInput{Content: "hi"})
		assertCode(t, err, models.CodeUnauthenticated)
	})

	n, err := f.store.Posts.EstimatedCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostService_CreatePublishesHydratedPost(t *testing.T) {
	f := newFixture(t)
	added := f.subscribe(t, notifications.TopicPostAdded)
	ctx, ada := f.register(t, "ada", "a@x.com")

	post, err := f.posts.Create(ctx, CreatePostInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, ada.ID, post.PostedByID)
	require.NotNil(t, post.PostedBy)
	assert.Equal(t, "a@x.com", post.PostedBy.Email)
	assert.Equal(t, models.PlaceholderImageURL, post.Image.URL)

	ev := receive(t, added)
	assert.Equal(t, notifications.TopicPostAdded, ev.Topic)
	require.NotNil(t, ev.Post)
	assert.Equal(t, post.ID, ev.Post.ID)
	assert.Equal(t, "ada", ev.Post.PostedBy.Username)
}

func TestPostService_AllPostsPagination(t *testing.T) {
	f := newFixture(t)
	_, ada := f.register(t, "ada", "a@x.com")

	// post-1 is the oldest, post-13 the newest.
	for i := 1; i <= 13; i++ {
		f.seedPost(t, ada, fmt.Sprintf("post-%d", i), time.Duration(i)*time.Minute)
	}

	contents := func(posts []*models.Post) []string {
		out := make([]string, len(posts))
		for i, p := range posts {
			out[i] = p.Content
		}
		return out
	}

	page2, err := f.posts.AllPosts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"post-7", "post-6", "post-5", "post-4", "post-3", "post-2"}, contents(page2))
	for _, p := range page2 {
		require.NotNil(t, p.PostedBy)
		assert.Equal(t, "ada", p.PostedBy.Username)
	}

	first, err := f.posts.AllPosts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"post-13", "post-12", "post-11", "post-10", "post-9", "post-8"}, contents(first))

	last, err := f.posts.AllPosts(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"post-1"}, contents(last))

	beyond, err := f.posts.AllPosts(context.Background(), 4)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestPostService_PostsByUserAndSearch(t *testing.T) {
	f := newFixture(t)
	adaCtx, ada := f.register(t, "ada", "a@x.com")
	_, bob := f.register(t, "bob", "b@x.com")
	f.seedPost(t, ada, "Go is fun", time.Minute)
	f.seedPost(t, bob, "go home", 2*time.Minute)
	f.seedPost(t, ada, "100% sure", 3*time.Minute)

	mine, err := f.posts.PostsByUser(adaCtx)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "100% sure", mine[0].Content)
	assert.Equal(t, "Go is fun", mine[1].Content)

	_, err = f.posts.PostsByUser(context.Background())
	assertCode(t, err, models.CodeUnauthenticated)

	found, err := f.posts.Search(context.Background(), "Go")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ada", found[0].PostedBy.Username)

	found, err = f.posts.Search(context.Background(), "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% sure", found[0].Content)
}

func TestPostService_SinglePostAndTotal(t *testing.T) {
	f := newFixture(t)
	_, ada := f.register(t, "ada", "a@x.com")
	post := f.seedPost(t, ada, "hello", 0)

	got, err := f.posts.SinglePost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.PostedBy.Username)

	_, err = f.posts.SinglePost(context.Background(), "missing")
	assertCode(t, err, models.CodeNotFound)

	total, err := f.posts.TotalPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPostService_UpdateOwnership(t *testing.T) {
	f := newFixture(t)
	updated := f.subscribe(t, notifications.TopicPostUpdated)
	adaCtx, ada := f.register(t, "ada", "a@x.com")
	bobCtx, _ := f.register(t, "bob", "b@x.com")
	post := f.seedPost(t, ada, "original", 0)
	originalImage := post.Image

	_, err := f.posts.Update(bobCtx, UpdatePostInput{ID: post.ID, Content: "hijacked"})
	assertForbiddenError(t, err)
	assertNoEvent(t, updated)

	_, err = f.posts.Update(adaCtx, UpdatePostInput{ID: post.ID, Content: "  "})
	assertValidationError(t, err)

	_, err = f.posts.Update(adaCtx, UpdatePostInput{ID: "missing", Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	got, err := f.posts.Update(adaCtx, UpdatePostInput{ID: post.ID, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, originalImage, got.Image, "image is kept when not supplied")
	assert.Equal(t, "ada", got.PostedBy.Username)
	assert.Equal(t, got.ID, receive(t, updated).Post.ID)

	img := models.Image{URL: "https://img/2.png", PublicID: "2"}
	got, err = f.posts.Update(adaCtx, UpdatePostInput{ID: post.ID, Content: "edited", Image: &img})
	require.NoError(t, err)
	assert.Equal(t, img, got.Image)
}

func TestPostService_DeleteOwnership(t *testing.T) {
	f := newFixture(t)
	deleted := f.subscribe(t, notifications.TopicPostDeleted)
	adaCtx, ada := f.register(t, "ada", "a@x.com")
	bobCtx, bob := f.register(t, "bob", "b@x.com")
	post := f.seedPost(t, ada, "keep me", 0)

	_, err := f.posts.Delete(bobCtx, post.ID)
	assertForbiddenError(t, err)
	stillThere, err := f.store.Posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stillThere.Content)
	assertNoEvent(t, deleted)

	require.NoError(t, f.store.Comments.Create(context.Background(),
		&models.Comment{Comment: "nice", PostID: post.ID, PostedByID: bob.ID}))

	snapshot, err := f.posts.Delete(adaCtx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, snapshot.ID)
	assert.Equal(t, "ada", snapshot.PostedBy.Username)
	assert.Equal(t, post.ID, receive(t, deleted).Post.ID)

	_, err = f.store.Posts.GetByID(context.Background(), post.ID)
	assertCode(t, err, models.CodeNotFound)

	n, err := f.store.Comments.CountByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// failingCommentRepo fails DeleteByPost and defers everything else.
type failingCommentRepo struct {
	repository.CommentRepository
}

func (failingCommentRepo) DeleteByPost(context.Context, string) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestPostService_DeleteSurvivesCommentCleanupFailure(t *testing.T) {
	f := newFixture(t)
	f.posts.comments = failingCommentRepo{f.store.Comments}
	ctx, ada := f.register(t, "ada", "a@x.com")
	post := f.seedPost(t, ada, "bye", 0)

	got, err := f.posts.Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}
