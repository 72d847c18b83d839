package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/repository"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture wires the services over an in-memory sqlite store.
type fixture struct {
	store    *repository.Store
	verifier *testutil.StaticVerifier
	broker   *notifications.Broker
	accounts *AccountService
	posts    *PostService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewSQLStore(testutil.NewSQLiteDB(t))
	verifier := testutil.NewStaticVerifier()
	broker := notifications.NewBroker(8)
	t.Cleanup(broker.Shutdown)

	gate := auth.NewGate(verifier, store.Accounts)
	hydrator := repository.NewHydrator(store.Accounts, store.Posts)

	return &fixture{
		store:    store,
		verifier: verifier,
		broker:   broker,
		accounts: NewAccountService(store.Accounts, gate),
		posts:    NewPostService(store.Posts, store.Comments, gate, hydrator, broker),
		comments: NewCommentService(store.Comments, store.Posts, gate, hydrator, broker),
	}
}

// register stores an account and returns a context authenticated as it.
func (f *fixture) register(t *testing.T, username, email string) (context.Context, *models.Account) {
	t.Helper()
	account := &models.Account{Username: username, Email: email}
	require.NoError(t, f.store.Accounts.Create(context.Background(), account))
	return f.as(email), account
}

// as returns a context carrying a token verified as email.
func (f *fixture) as(email string) context.Context {
	return auth.WithToken(context.Background(), f.verifier.Grant("tok-"+email, email))
}

// seedPost stores a post created at base+offset so feed order is deterministic.
func (f *fixture) seedPost(t *testing.T, owner *models.Account, content string, offset time.Duration) *models.Post {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	post := &models.Post{Content: content, PostedByID: owner.ID, CreatedAt: base.Add(offset)}
	require.NoError(t, f.store.Posts.Create(context.Background(), post))
	return post
}

func (f *fixture) subscribe(t *testing.T, topic notifications.Topic) <-chan notifications.Event {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return f.broker.Subscribe(ctx, topic)
}

func receive(t *testing.T, ch <-chan notifications.Event) notifications.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return notifications.Event{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan notifications.Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %s", ev.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
	assert.Equal(t, "Unauthorized action", models.AsAppError(err).Message)
}
