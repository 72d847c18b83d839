package repository

import (
	"context"
	"errors"
	"time"

	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger(collectionComments)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := Observe(ctx, "sql", "create", collectionComments)
	defer func() { end(err) }()

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", comment.ID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (_ *models.Comment, err error) {
	ctx, end := Observe(ctx, "sql", "get", collectionComments)
	defer func() { end(err) }()

	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return r.find(ctx, "list_by_post", func(db *gorm.DB) *gorm.DB {
		return db.Where("post_id = ?", postID)
	})
}

func (r *commentRepository) List(ctx context.Context) ([]*models.Comment, error) {
	return r.find(ctx, "list", func(db *gorm.DB) *gorm.DB { return db })
}

func (r *commentRepository) find(ctx context.Context, operation string, scope func(*gorm.DB) *gorm.DB) (_ []*models.Comment, err error) {
	ctx, end := Observe(ctx, "sql", operation, collectionComments)
	defer func() { end(err) }()

	var comments []*models.Comment
	if err := r.db.WithContext(ctx).Scopes(scope).Order("created_at desc").Find(&comments).Error; err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (_ int64, err error) {
	ctx, end := Observe(ctx, "sql", "count", collectionComments)
	defer func() { end(err) }()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := Observe(ctx, "sql", "update", collectionComments)
	defer func() { end(err) }()

	comment.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).
		Select("Comment", "UpdatedAt").
		Updates(comment)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	if err := r.db.WithContext(ctx).First(comment, "id = ?", comment.ID).Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", comment.ID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) (_ *models.Comment, err error) {
	ctx, end := Observe(ctx, "sql", "delete", collectionComments)
	defer func() { end(err) }()

	var comment models.Comment
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, "id = ?", id).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, txErr, "delete")
		return nil, models.NewInternalError(txErr)
	}
	r.log.LogWrite(ctx, "delete", id)
	return &comment, nil
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (_ int64, err error) {
	ctx, end := Observe(ctx, "sql", "delete_by_post", collectionComments)
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete_by_post")
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
