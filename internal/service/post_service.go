package service

import (
	"context"
	"log/slog"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	gate     *auth.Gate
	hydrator *repository.Hydrator
	events   notifications.Publisher
}

type CreatePostInput struct {
	Content string
	Image   *models.Image
}

type UpdatePostInput struct {
	ID      string
	Content string
	// Image replaces the stored image when set.
	Image *models.Image
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	gate *auth.Gate,
	hydrator *repository.Hydrator,
	events notifications.Publisher,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		gate:     gate,
		hydrator: hydrator,
		events:   events,
	}
}

// PageOffset converts a 1-based page number into a row offset. Pages below 1 read as 1.
func PageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * models.PostsPageSize
}

// AllPosts returns one page of the feed, newest first.
func (s *PostService) AllPosts(ctx context.Context, page int) (posts []*models.Post, err error) {
	ctx, done := observe(ctx, "post", "all_posts")
	defer func() { done(err) }()

	posts, err = s.posts.List(ctx, models.PostsPageSize, PageOffset(page))
	if err != nil {
		return nil, err
	}
	return posts, s.hydrator.Posts(ctx, posts)
}

// PostsByUser returns the caller's posts, newest first.
func (s *PostService) PostsByUser(ctx context.Context) (posts []*models.Post, err error) {
	ctx, done := observe(ctx, "post", "posts_by_user")
	defer func() { done(err) }()

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	posts, err = s.posts.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return posts, s.hydrator.Posts(ctx, posts)
}

func (s *PostService) SinglePost(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, done := observe(ctx, "post", "single_post")
	defer func() { done(err) }()

	post, err = s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return post, s.hydrator.Post(ctx, post)
}

// TotalPosts returns the store's estimate of the number of posts.
func (s *PostService) TotalPosts(ctx context.Context) (n int64, err error) {
	ctx, done := observe(ctx, "post", "total_posts")
	defer func() { done(err) }()

	return s.posts.EstimatedCount(ctx)
}

// Search returns posts whose content contains query literally.
func (s *PostService) Search(ctx context.Context, query string) (posts []*models.Post, err error) {
	ctx, done := observe(ctx, "post", "search")
	defer func() { done(err) }()

	posts, err = s.posts.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return posts, s.hydrator.Posts(ctx, posts)
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, done := observe(ctx, "post", "create")
	defer func() { done(err) }()

	if isBlank(in.Content) {
		return nil, models.NewValidationError("Content is required!")
	}

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		Content:    in.Content,
		PostedByID: caller.ID,
	}
	if in.Image != nil {
		post.Image = *in.Image
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.hydrator.Post(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicPostAdded, Post: post})
	return post, nil
}

func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, done := observe(ctx, "post", "update")
	defer func() { done(err) }()

	if isBlank(in.Content) {
		return nil, models.NewValidationError("Content is required!")
	}

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	post, err = s.posts.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if post.PostedByID != caller.ID {
		return nil, errUnauthorizedAction()
	}

	post.Content = in.Content
	if in.Image != nil {
		post.Image = *in.Image
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.hydrator.Post(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicPostUpdated, Post: post})
	return post, nil
}

// Delete removes the caller's post and returns its last stored state.
// The post's comments are removed afterwards on a best-effort basis.
func (s *PostService) Delete(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, done := observe(ctx, "post", "delete")
	defer func() { done(err) }()

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	target, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.PostedByID != caller.ID {
		return nil, errUnauthorizedAction()
	}

	post, err = s.posts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.comments != nil {
		if n, err := s.comments.DeleteByPost(ctx, id); err != nil {
			observability.Logger.WarnContext(ctx, "failed to remove comments of deleted post",
				slog.String("post_id", id),
				slog.String("error", err.Error()),
			)
		} else if n > 0 {
			observability.Logger.InfoContext(ctx, "removed comments of deleted post",
				slog.String("post_id", id),
				slog.Int64("count", n),
			)
		}
	}

	if err := s.hydrator.Post(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicPostDeleted, Post: post})
	return post, nil
}
