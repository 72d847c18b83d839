package auth

import (
	"context"
	"log/slog"

	"postboard/internal/identity"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

// Gate verifies the caller's token and resolves the matching account.
// It never creates accounts.
type Gate struct {
	verifier identity.Verifier
	accounts repository.AccountRepository
}

// NewGate creates a Gate.
func NewGate(verifier identity.Verifier, accounts repository.AccountRepository) *Gate {
	return &Gate{verifier: verifier, accounts: accounts}
}

// Identify verifies the token carried by ctx.
func (g *Gate) Identify(ctx context.Context) (*identity.Identity, error) {
	id, err := g.verifier.Verify(ctx, TokenFromContext(ctx))
	if err != nil {
		observability.Logger.DebugContext(ctx, "token rejected", slog.String("error", err.Error()))
		return nil, models.NewAuthenticationError("Invalid or expired token", err)
	}
	return id, nil
}

// Authenticate verifies the token and loads the account registered for its email.
func (g *Gate) Authenticate(ctx context.Context) (*models.Account, error) {
	id, err := g.Identify(ctx)
	if err != nil {
		return nil, err
	}
	account, err := g.accounts.GetByEmail(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.NewMissingError("Account not found, please register")
	}
	return account, nil
}
