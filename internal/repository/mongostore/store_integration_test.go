package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupStore connects to MONGO_TEST_URI and returns a store on a throwaway database.
func setupStore(t *testing.T) *repository.Store {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping document store integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("postboard_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	store, err := New(ctx, db)
	require.NoError(t, err)
	require.NoError(t, store.Backend.Ping(ctx))
	return store
}

func TestStore_Integration(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	ada := &models.Account{Username: "ada", Email: "ada@example.com"}
	require.NoError(t, s.Accounts.Create(ctx, ada))
	assert.Len(t, ada.ID, 24)
	require.Len(t, ada.Images, 1)

	err := s.Accounts.Create(ctx, &models.Account{Username: "ada", Email: "other@example.com"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	missing, err := s.Accounts.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	var posts []*models.Post
	for _, content := range []string{"Go one", "a.b two", "three"} {
		p := &models.Post{Content: content, PostedByID: ada.ID}
		require.NoError(t, s.Posts.Create(ctx, p))
		posts = append(posts, p)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := s.Posts.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Content)

	found, err := s.Posts.Search(ctx, "a.b")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a.b two", found[0].Content)

	found, err = s.Posts.Search(ctx, "go")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.Posts.GetByID(ctx, "not-hex")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	c := &models.Comment{Comment: "nice", PostID: posts[0].ID, PostedByID: ada.ID}
	require.NoError(t, s.Comments.Create(ctx, c))
	n, err := s.Comments.CountByPost(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	deleted, err := s.Posts.Delete(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Go one", deleted.Content)

	removed, err := s.Comments.DeleteByPost(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
