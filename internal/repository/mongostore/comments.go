package mongostore

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewCommentRepository returns a CommentRepository over the comments collection.
func NewCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &commentRepository{
		coll: db.Collection(collectionComments),
		log:  observability.NewRepoLogger(collectionComments),
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := repository.Observe(ctx, system, "create", collectionComments)
	defer func() { end(err) }()

	postID, ok := objectID(comment.PostID)
	if !ok {
		return models.NewNotFoundError("Post", comment.PostID)
	}
	owner, _ := objectID(comment.PostedByID)
	ts := now()
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		Comment:   comment.Comment,
		Post:      postID,
		PostedBy:  owner,
		CreatedAt: createdAt(comment.CreatedAt, ts),
		UpdatedAt: ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	*comment = *doc.model()
	r.log.LogWrite(ctx, "create", comment.ID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (_ *models.Comment, err error) {
	ctx, end := repository.Observe(ctx, system, "get", collectionComments)
	defer func() { end(err) }()

	oid, ok := objectID(id)
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	var doc commentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return doc.model(), nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	oid, ok := objectID(postID)
	if !ok {
		return []*models.Comment{}, nil
	}
	return r.find(ctx, "list_by_post", bson.M{"post": oid})
}

func (r *commentRepository) List(ctx context.Context) ([]*models.Comment, error) {
	return r.find(ctx, "list", bson.M{})
}

func (r *commentRepository) find(ctx context.Context, operation string, filter bson.M) (_ []*models.Comment, err error) {
	ctx, end := repository.Observe(ctx, system, operation, collectionComments)
	defer func() { end(err) }()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	comments, err := decodeAll(ctx, cur, commentModel)
	if err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (_ int64, err error) {
	oid, ok := objectID(postID)
	if !ok {
		return 0, nil
	}
	ctx, end := repository.Observe(ctx, system, "count", collectionComments)
	defer func() { end(err) }()

	n, err := r.coll.CountDocuments(ctx, bson.M{"post": oid})
	if err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := repository.Observe(ctx, system, "update", collectionComments)
	defer func() { end(err) }()

	oid, ok := objectID(comment.ID)
	if !ok {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	set := bson.M{"comment": comment.Comment, "updatedAt": now()}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc commentDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return models.NewNotFoundError("Comment", comment.ID)
		}
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	*comment = *doc.model()
	r.log.LogWrite(ctx, "update", comment.ID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) (_ *models.Comment, err error) {
	ctx, end := repository.Observe(ctx, system, "delete", collectionComments)
	defer func() { end(err) }()

	oid, ok := objectID(id)
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	var doc commentDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, err, "delete")
		return nil, models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "delete", id)
	return doc.model(), nil
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (_ int64, err error) {
	oid, ok := objectID(postID)
	if !ok {
		return 0, nil
	}
	ctx, end := repository.Observe(ctx, system, "delete_by_post", collectionComments)
	defer func() { end(err) }()

	res, err := r.coll.DeleteMany(ctx, bson.M{"post": oid})
	if err != nil {
		r.log.LogError(ctx, err, "delete_by_post")
		return 0, models.NewInternalError(err)
	}
	return res.DeletedCount, nil
}
