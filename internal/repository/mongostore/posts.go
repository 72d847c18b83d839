package mongostore

import (
	"context"
	"regexp"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewPostRepository returns a PostRepository over the posts collection.
func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepository{
		coll: db.Collection(collectionPosts),
		log:  observability.NewRepoLogger(collectionPosts),
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := repository.Observe(ctx, system, "create", collectionPosts)
	defer func() { end(err) }()

	owner, ok := objectID(post.PostedByID)
	if !ok {
		return models.NewValidationError("Post owner is invalid")
	}
	ts := now()
	doc := postDocument{
		ID:        primitive.NewObjectID(),
		Content:   post.Content,
		Image:     post.Image.WithDefaults(),
		PostedBy:  owner,
		Comments:  post.Comments,
		CreatedAt: createdAt(post.CreatedAt, ts),
		UpdatedAt: ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	*post = *doc.model()
	r.log.LogWrite(ctx, "create", post.ID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := repository.Observe(ctx, system, "get", collectionPosts)
	defer func() { end(err) }()

	oid, ok := objectID(id)
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return doc.model(), nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, "get_many", bson.M{"_id": bson.M{"$in": oids}}, nil)
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(limit))
	return r.find(ctx, "list", bson.M{}, opts)
}

func (r *postRepository) ListByUser(ctx context.Context, accountID string) ([]*models.Post, error) {
	owner, ok := objectID(accountID)
	if !ok {
		return []*models.Post{}, nil
	}
	return r.find(ctx, "list_by_user", bson.M{"postedBy": owner}, nil)
}

func (r *postRepository) Search(ctx context.Context, query string) ([]*models.Post, error) {
	filter := bson.M{"content": primitive.Regex{Pattern: regexp.QuoteMeta(query)}}
	return r.find(ctx, "search", filter, nil)
}

func (r *postRepository) find(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) (_ []*models.Post, err error) {
	ctx, end := repository.Observe(ctx, system, operation, collectionPosts)
	defer func() { end(err) }()

	if opts == nil {
		opts = options.Find()
	}
	opts.SetSort(newestFirst)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	posts, err := decodeAll(ctx, cur, postModel)
	if err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, end := repository.Observe(ctx, system, "update", collectionPosts)
	defer func() { end(err) }()

	oid, ok := objectID(post.ID)
	if !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	set := bson.M{
		"content":   post.Content,
		"image":     post.Image.WithDefaults(),
		"updatedAt": now(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return models.NewNotFoundError("Post", post.ID)
		}
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	*post = *doc.model()
	r.log.LogWrite(ctx, "update", post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := repository.Observe(ctx, system, "delete", collectionPosts)
	defer func() { end(err) }()

	oid, ok := objectID(id)
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	var doc postDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, err, "delete")
		return nil, models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "delete", id)
	return doc.model(), nil
}

func (r *postRepository) EstimatedCount(ctx context.Context) (_ int64, err error) {
	ctx, end := repository.Observe(ctx, system, "count", collectionPosts)
	defer func() { end(err) }()

	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
