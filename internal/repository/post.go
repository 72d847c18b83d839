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

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger(collectionPosts)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := Observe(ctx, "sql", "create", collectionPosts)
	defer func() { end(err) }()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.Image = post.Image.WithDefaults()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", post.ID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := Observe(ctx, "sql", "get", collectionPosts)
	defer func() { end(err) }()

	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) (_ []*models.Post, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, end := Observe(ctx, "sql", "get_many", collectionPosts)
	defer func() { end(err) }()

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "get_many")
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return r.find(ctx, "list", func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	})
}

func (r *postRepository) ListByUser(ctx context.Context, accountID string) ([]*models.Post, error) {
	return r.find(ctx, "list_by_user", func(db *gorm.DB) *gorm.DB {
		return db.Where("posted_by_id = ?", accountID)
	})
}

func (r *postRepository) Search(ctx context.Context, query string) ([]*models.Post, error) {
	return r.find(ctx, "search", func(db *gorm.DB) *gorm.DB {
		return db.Where(substringCondition(db, "content"), query)
	})
}

func (r *postRepository) find(ctx context.Context, operation string, scope func(*gorm.DB) *gorm.DB) (_ []*models.Post, err error) {
	ctx, end := Observe(ctx, "sql", operation, collectionPosts)
	defer func() { end(err) }()

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Scopes(scope).Order("created_at desc").Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, end := Observe(ctx, "sql", "update", collectionPosts)
	defer func() { end(err) }()

	post.Image = post.Image.WithDefaults()
	post.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("Content", "Image", "UpdatedAt").
		Updates(post)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	if err := r.db.WithContext(ctx).First(post, "id = ?", post.ID).Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := Observe(ctx, "sql", "delete", collectionPosts)
	defer func() { end(err) }()

	var post models.Post
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, txErr, "delete")
		return nil, models.NewInternalError(txErr)
	}
	r.log.LogWrite(ctx, "delete", id)
	return &post, nil
}

// EstimatedCount reads the planner estimate on postgres and falls back to an exact count.
func (r *postRepository) EstimatedCount(ctx context.Context) (_ int64, err error) {
	ctx, end := Observe(ctx, "sql", "count", collectionPosts)
	defer func() { end(err) }()

	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		var estimate int64
		row := db.Raw("SELECT reltuples::bigint FROM pg_class WHERE relname = ?", collectionPosts).Row()
		if row != nil && row.Scan(&estimate) == nil && estimate > 0 {
			return estimate, nil
		}
	}

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
