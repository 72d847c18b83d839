// Package mongostore is the document-database backend of the entity store.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collectionAccounts = "users"
	collectionPosts    = "posts"
	collectionComments = "comments"
	system             = "mongodb"
)

type backend struct {
	db *mongo.Database
}

func (b *backend) Name() string { return "mongo" }

func (b *backend) Ping(ctx context.Context) error {
	return b.db.Client().Ping(ctx, readpref.Primary())
}

func (b *backend) Close(ctx context.Context) error {
	return b.db.Client().Disconnect(ctx)
}

// New ensures the collection indexes and returns a Store over db.
func New(ctx context.Context, db *mongo.Database) (*repository.Store, error) {
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &repository.Store{
		Accounts: NewAccountRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Backend:  &backend{db: db},
	}, nil
}

// EnsureIndexes creates the unique account indexes and the feed indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		collectionAccounts: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionPosts: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "postedBy", Value: 1}}},
		},
		collectionComments: {
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// newestFirst orders by creation time with the id as tie-breaker.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// objectID parses a hex id. ok is false for anything that is not a valid ObjectID.
func objectID(id string) (oid primitive.ObjectID, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// objectIDs parses ids and skips the invalid ones.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

// hexOrEmpty renders an ObjectID, mapping the zero value to "".
func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func decodeAll[D any, M any](ctx context.Context, cur *mongo.Cursor, convert func(*D) *M) ([]*M, error) {
	defer cur.Close(ctx)
	out := make([]*M, 0)
	for cur.Next(ctx) {
		var doc D
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, convert(&doc))
	}
	return out, cur.Err()
}
