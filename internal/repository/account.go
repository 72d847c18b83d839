package repository

import (
	"context"
	"errors"

	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, log: observability.NewRepoLogger(collectionAccounts)}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) (err error) {
	ctx, end := Observe(ctx, "sql", "create", collectionAccounts)
	defer func() { end(err) }()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if len(account.Images) == 0 {
		account.Images = []models.Image{models.PlaceholderImage()}
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Account with this username or email already exists", err)
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", account.ID)
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (_ *models.Account, err error) {
	ctx, end := Observe(ctx, "sql", "get", collectionAccounts)
	defer func() { end(err) }()

	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *accountRepository) findOne(ctx context.Context, cond string, value string) (_ *models.Account, err error) {
	ctx, end := Observe(ctx, "sql", "find", collectionAccounts)
	defer func() { end(err) }()

	var account models.Account
	if err := r.db.WithContext(ctx).Where(cond, value).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.LogError(ctx, err, "find")
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByIDs(ctx context.Context, ids []string) (_ []*models.Account, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, end := Observe(ctx, "sql", "get_many", collectionAccounts)
	defer func() { end(err) }()

	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		r.log.LogError(ctx, err, "get_many")
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) List(ctx context.Context) (_ []*models.Account, err error) {
	ctx, end := Observe(ctx, "sql", "list", collectionAccounts)
	defer func() { end(err) }()

	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&accounts).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateByEmail(ctx context.Context, email string, update models.AccountUpdate) (_ *models.Account, err error) {
	ctx, end := Observe(ctx, "sql", "update", collectionAccounts)
	defer func() { end(err) }()

	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", email)
		}
		r.log.LogError(ctx, err, "update")
		return nil, models.NewInternalError(err)
	}

	applyAccountUpdate(&account, update)

	if err := r.db.WithContext(ctx).Save(&account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Account with this username or email already exists", err)
		}
		r.log.LogError(ctx, err, "update")
		return nil, models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", account.ID)
	return &account, nil
}

func applyAccountUpdate(account *models.Account, update models.AccountUpdate) {
	if update.Username != nil {
		account.Username = *update.Username
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Email != nil {
		account.Email = *update.Email
	}
	if update.Images != nil {
		account.Images = *update.Images
	}
	if update.About != nil {
		account.About = *update.About
	}
}
