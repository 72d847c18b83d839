package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"github.com/teris-io/shortid"
)

const maxHandleAttempts = 5

// AccountService serves profile reads and account provisioning.
type AccountService struct {
	accounts  repository.AccountRepository
	gate      *auth.Gate
	newHandle func() (string, error)
}

// UpdateAccountInput carries the fields of userUpdate. Nil fields are left untouched.
type UpdateAccountInput struct {
	Username *string
	Name     *string
	Email    *string
	Images   *[]models.Image
	About    *string
}

func NewAccountService(accounts repository.AccountRepository, gate *auth.Gate) *AccountService {
	return &AccountService{
		accounts:  accounts,
		gate:      gate,
		newHandle: shortid.Generate,
	}
}

// Profile returns the caller's own account.
func (s *AccountService) Profile(ctx context.Context) (account *models.Account, err error) {
	ctx, done := observe(ctx, "account", "profile")
	defer func() { done(err) }()

	return s.gate.Authenticate(ctx)
}

// PublicProfile returns the account with the given handle, or nil.
func (s *AccountService) PublicProfile(ctx context.Context, username string) (account *models.Account, err error) {
	ctx, done := observe(ctx, "account", "public_profile")
	defer func() { done(err) }()

	return s.accounts.GetByUsername(ctx, username)
}

func (s *AccountService) AllUsers(ctx context.Context) (accounts []*models.Account, err error) {
	ctx, done := observe(ctx, "account", "all_users")
	defer func() { done(err) }()

	return s.accounts.List(ctx)
}

// Create provisions an account for the verified caller. It is idempotent per
// email: an existing account is returned unchanged.
func (s *AccountService) Create(ctx context.Context) (account *models.Account, err error) {
	ctx, done := observe(ctx, "account", "create")
	defer func() { done(err) }()

	id, err := s.gate.Identify(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByEmail(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		handle, err := s.newHandle()
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("generate handle: %w", err))
		}

		account := &models.Account{Username: handle, Email: id.Email}
		err = s.accounts.Create(ctx, account)
		if err == nil {
			observability.Logger.InfoContext(ctx, "account provisioned",
				slog.String("account_id", account.ID),
				slog.String("username", account.Username),
			)
			return account, nil
		}
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}

		// A concurrent userCreate for the same email may have won.
		winner, lookupErr := s.accounts.GetByEmail(ctx, id.Email)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if winner != nil {
			return winner, nil
		}
		observability.Logger.WarnContext(ctx, "generated handle collided, retrying",
			slog.String("username", handle),
			slog.Int("attempt", attempt),
		)
	}

	return nil, models.NewConflictError("Could not allocate a unique username",
		errors.New("handle collisions exhausted"))
}

// Update applies input to the caller's own account.
func (s *AccountService) Update(ctx context.Context, in UpdateAccountInput) (account *models.Account, err error) {
	ctx, done := observe(ctx, "account", "update")
	defer func() { done(err) }()

	if in.Username != nil && isBlank(*in.Username) {
		return nil, models.NewValidationError("Username cannot be empty")
	}
	if in.Email != nil && isBlank(*in.Email) {
		return nil, models.NewValidationError("Email cannot be empty")
	}

	caller, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	return s.accounts.UpdateByEmail(ctx, caller.Email, models.AccountUpdate{
		Username: in.Username,
		Name:     in.Name,
		Email:    in.Email,
		Images:   in.Images,
		About:    in.About,
	})
}
