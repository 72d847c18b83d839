package repository

import (
	"context"

	"postboard/internal/cache"
	"postboard/internal/models"
)

// cachedPostRepository serves single-post reads and the post count from
// Redis, and drops the affected keys on every write.
type cachedPostRepository struct {
	PostRepository
	cache *cache.Cache
}

// NewCachedPostRepository decorates next with cache-aside reads. A nil cache disables it.
func NewCachedPostRepository(next PostRepository, c *cache.Cache) PostRepository {
	if c == nil {
		return next
	}
	return &cachedPostRepository{PostRepository: next, cache: c}
}

func (r *cachedPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		found, err := r.PostRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *cachedPostRepository) EstimatedCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.cache.Aside(ctx, cache.PostsCountKey, &count, cache.PostsCountTTL, func() error {
		n, err := r.PostRepository.EstimatedCount(ctx)
		count = n
		return err
	})
	return count, err
}

func (r *cachedPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.PostRepository.Create(ctx, post); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, cache.PostsCountKey)
	return nil
}

func (r *cachedPostRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.PostRepository.Update(ctx, post)
	r.cache.Invalidate(ctx, cache.PostKey(post.ID))
	return err
}

func (r *cachedPostRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	post, err := r.PostRepository.Delete(ctx, id)
	r.cache.Invalidate(ctx, cache.PostKey(id), cache.PostsCountKey)
	return post, err
}
