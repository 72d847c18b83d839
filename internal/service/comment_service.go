package service

import (
	"context"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	gate     *auth.Gate
	hydrator *repository.Hydrator
	events   notifications.Publisher
}

type CreateCommentInput struct {
	PostID  string
	Comment string
}

type UpdateCommentInput struct {
	ID      string
	Comment string
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	gate *auth.Gate,
	hydrator *repository.Hydrator,
	events notifications.Publisher,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		gate:     gate,
		hydrator: hydrator,
		events:   events,
	}
}

// CommentsByPost returns the comments of an existing post, newest first.
func (s *CommentService) CommentsByPost(ctx context.Context, postID string) (comments []*models.Comment, err error) {
	ctx, done := observe(ctx, "comment", "comments_by_post")
	defer func() { done(err) }()

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err = s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return comments, s.hydrator.Comments(ctx, comments)
}

// TotalCommentsPerPost returns the exact number of comments referencing postID.
func (s *CommentService) TotalCommentsPerPost(ctx context.Context, postID string) (n int64, err error) {
	ctx, done := observe(ctx, "comment", "total_comments_per_post")
	defer func() { done(err) }()

	return s.comments.CountByPost(ctx, postID)
}

func (s *CommentService) AllComments(ctx context.Context) (comments []*models.Comment, err error) {
	ctx, done := observe(ctx, "comment", "all_comments")
	defer func() { done(err) }()

	comments, err = s.comments.List(ctx)
	if err != nil {
		return nil, err
	}
	return comments, s.hydrator.Comments(ctx, comments)
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, done := observe(ctx, "comment", "create")
	defer func() { done(err) }()

	if isBlank(in.Comment) {
		return nil, models.NewValidationError("Comment is required!")
	}

	caller, err := s.commenter(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment = &models.Comment{
		Comment:    in.Comment,
		PostID:     post.ID,
		PostedByID: caller.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.hydrator.Comment(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicCommentAdded, Comment: comment})
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, in UpdateCommentInput) (comment *models.Comment, err error) {
	ctx, done := observe(ctx, "comment", "update")
	defer func() { done(err) }()

	if isBlank(in.Comment) {
		return nil, models.NewValidationError("Comment is required!")
	}

	caller, err := s.commenter(ctx)
	if err != nil {
		return nil, err
	}

	comment, err = s.comments.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if comment.PostedByID != caller.ID {
		return nil, errUnauthorizedAction()
	}

	comment.Comment = in.Comment
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.hydrator.Comment(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicCommentUpdated, Comment: comment})
	return comment, nil
}

// Delete removes the caller's comment and returns its last stored state.
func (s *CommentService) Delete(ctx context.Context, id string) (comment *models.Comment, err error) {
	ctx, done := observe(ctx, "comment", "delete")
	defer func() { done(err) }()

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	target, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.PostedByID != caller.ID {
		return nil, errUnauthorizedAction()
	}

	comment, err = s.comments.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrator.Comment(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Topic: notifications.TopicCommentDeleted, Comment: comment})
	return comment, nil
}

// commenter authenticates the caller, reporting a verified but unregistered
// caller as not logged in.
func (s *CommentService) commenter(ctx context.Context) (*models.Account, error) {
	caller, err := s.gate.Authenticate(ctx)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, models.NewAuthenticationError("Please login to comment!", err)
	}
	return caller, err
}
