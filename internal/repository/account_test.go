package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_Create(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "ada", "ada@example.com")
	assert.Len(t, account.ID, 36)
	require.Len(t, account.Images, 1)
	assert.Equal(t, models.PlaceholderImageURL, account.Images[0].URL)
	assert.NotEmpty(t, account.Images[0].PublicID)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"duplicate username", "ada", "other@example.com"},
		{"duplicate email", "other", "ada@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Accounts.Create(ctx, &models.Account{Username: tt.username, Email: tt.email})
			assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
		})
	}
}

func TestAccountRepository_Lookups(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	ada := seedAccount(t, s, "ada", "ada@example.com")
	bob := seedAccount(t, s, "bob", "bob@example.com")

	got, err := s.Accounts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = s.Accounts.GetByID(ctx, "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	got, err = s.Accounts.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	got, err = s.Accounts.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.Accounts.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	got, err = s.Accounts.GetByUsername(ctx, "carol")
	assert.NoError(t, err)
	assert.Nil(t, got)

	many, err := s.Accounts.GetByIDs(ctx, []string{ada.ID, bob.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	all, err := s.Accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAccountRepository_UpdateByEmail(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedAccount(t, s, "ada", "ada@example.com")
	seedAccount(t, s, "bob", "bob@example.com")

	about := "mathematician"
	images := []models.Image{{URL: "https://cdn.example.com/a.png", PublicID: "a"}}
	updated, err := s.Accounts.UpdateByEmail(ctx, "ada@example.com", models.AccountUpdate{
		About:  &about,
		Images: &images,
	})
	require.NoError(t, err)
	assert.Equal(t, "mathematician", updated.About)
	assert.Equal(t, "ada", updated.Username)
	assert.Equal(t, images, updated.Images)

	taken := "bob"
	_, err = s.Accounts.UpdateByEmail(ctx, "ada@example.com", models.AccountUpdate{Username: &taken})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	_, err = s.Accounts.UpdateByEmail(ctx, "nobody@example.com", models.AccountUpdate{About: &about})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAccountRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WithArgs("acc-1", 1).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "acc-1")
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.Equal(t, "Internal server error", models.AsAppError(err).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)")))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
}
