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

type accountRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

// NewAccountRepository returns an AccountRepository over the users collection.
func NewAccountRepository(db *mongo.Database) repository.AccountRepository {
	return &accountRepository{
		coll: db.Collection(collectionAccounts),
		log:  observability.NewRepoLogger(collectionAccounts),
	}
}

func (r *accountRepository) conflictOr(ctx context.Context, err error, operation string) error {
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError("Account with this username or email already exists", err)
	}
	r.log.LogError(ctx, err, operation)
	return models.NewInternalError(err)
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) (err error) {
	ctx, end := repository.Observe(ctx, system, "create", collectionAccounts)
	defer func() { end(err) }()

	if len(account.Images) == 0 {
		account.Images = []models.Image{models.PlaceholderImage()}
	}
	ts := now()
	doc := accountDocument{
		ID:        primitive.NewObjectID(),
		Username:  account.Username,
		Name:      account.Name,
		Email:     account.Email,
		Images:    account.Images,
		About:     account.About,
		CreatedAt: createdAt(account.CreatedAt, ts),
		UpdatedAt: ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return r.conflictOr(ctx, err, "create")
	}
	*account = *doc.model()
	r.log.LogWrite(ctx, "create", account.ID)
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (_ *models.Account, err error) {
	ctx, end := repository.Observe(ctx, system, "get", collectionAccounts)
	defer func() { end(err) }()

	oid, ok := objectID(id)
	if !ok {
		return nil, models.NewNotFoundError("Account", id)
	}
	var doc accountDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Account", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return doc.model(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (_ *models.Account, err error) {
	ctx, end := repository.Observe(ctx, system, "find", collectionAccounts)
	defer func() { end(err) }()

	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		r.log.LogError(ctx, err, "find")
		return nil, models.NewInternalError(err)
	}
	return doc.model(), nil
}

func (r *accountRepository) GetByIDs(ctx context.Context, ids []string) (_ []*models.Account, err error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	ctx, end := repository.Observe(ctx, system, "get_many", collectionAccounts)
	defer func() { end(err) }()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		r.log.LogError(ctx, err, "get_many")
		return nil, models.NewInternalError(err)
	}
	accounts, err := decodeAll(ctx, cur, accountModel)
	if err != nil {
		r.log.LogError(ctx, err, "get_many")
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) List(ctx context.Context) (_ []*models.Account, err error) {
	ctx, end := repository.Observe(ctx, system, "list", collectionAccounts)
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	accounts, err := decodeAll(ctx, cur, accountModel)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateByEmail(ctx context.Context, email string, update models.AccountUpdate) (_ *models.Account, err error) {
	ctx, end := repository.Observe(ctx, system, "update", collectionAccounts)
	defer func() { end(err) }()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": accountSet(update)}, opts).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, models.NewNotFoundError("Account", email)
		}
		return nil, r.conflictOr(ctx, err, "update")
	}
	r.log.LogWrite(ctx, "update", hexOrEmpty(doc.ID))
	return doc.model(), nil
}

// accountSet builds the $set document for the non-nil fields of update.
func accountSet(update models.AccountUpdate) bson.M {
	set := bson.M{"updatedAt": now()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Images != nil {
		set["images"] = *update.Images
	}
	if update.About != nil {
		set["about"] = *update.About
	}
	return set
}
