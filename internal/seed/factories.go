// Package seed provides helpers to create demo data through the entity store.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// Factory builds domain entities and persists them through a Store.
type Factory struct {
	store *repository.Store
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a Factory bound to store. A zero Options.RandSeed picks
// a random seed.
func NewFactory(store *repository.Store, opts Options) *Factory {
	return &Factory{
		store: store,
		opts:  opts.withDefaults(),
		faker: gofakeit.New(opts.RandSeed),
		now:   time.Now,
	}
}

// BuildAccount constructs an account without persisting it.
func (f *Factory) BuildAccount(overrides ...func(*models.Account)) *models.Account {
	handle, err := shortid.Generate()
	if err != nil {
		handle = f.faker.Username()
	}
	first, last := f.faker.FirstName(), f.faker.LastName()
	account := &models.Account{
		Username: handle,
		Name:     first + " " + last,
		Email:    strings.ToLower(fmt.Sprintf("%s.%s.%d@%s", first, last, f.faker.Number(100, 99999), f.faker.DomainName())),
		About:    f.faker.Sentence(10),
		Images: []models.Image{{
			URL:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
			PublicID: f.faker.UUID(),
		}},
	}
	for _, override := range overrides {
		override(account)
	}
	return account
}

// CreateAccount builds and persists an account.
func (f *Factory) CreateAccount(ctx context.Context, overrides ...func(*models.Account)) (*models.Account, error) {
	account := f.BuildAccount(overrides...)
	if f.opts.DryRun {
		account.ID = uuid.NewString()
		return account, nil
	}
	if err := f.store.Accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account %s: %w", account.Email, err)
	}
	return account, nil
}

// BuildPost constructs a post owned by owner without persisting it. Roughly
// half of the generated posts carry an image.
func (f *Factory) BuildPost(owner *models.Account, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:    f.faker.Paragraph(1, 3, 8, "\n"),
		PostedByID: owner.ID,
		CreatedAt:  f.backdate(),
	}
	if f.faker.Bool() {
		post.Image = models.Image{
			URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
			PublicID: f.faker.UUID(),
		}
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(ctx context.Context, owner *models.Account, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(owner, overrides...)
	if f.opts.DryRun {
		post.ID = uuid.NewString()
		return post, nil
	}
	if err := f.store.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// BuildComment constructs a comment by author on post without persisting it.
func (f *Factory) BuildComment(post *models.Post, author *models.Account, overrides ...func(*models.Comment)) *models.Comment {
	created := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute)
	if now := f.now(); created.After(now) {
		created = now
	}
	comment := &models.Comment{
		Comment:    f.faker.Sentence(f.faker.Number(4, 16)),
		PostID:     post.ID,
		PostedByID: author.ID,
		CreatedAt:  created,
	}
	for _, override := range overrides {
		override(comment)
	}
	return comment
}

// CreateComment builds and persists a comment.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.Account, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := f.BuildComment(post, author, overrides...)
	if f.opts.DryRun {
		comment.ID = uuid.NewString()
		return comment, nil
	}
	if err := f.store.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment on %s: %w", post.ID, err)
	}
	return comment, nil
}

// backdate spreads creation times over the last MaxDays days.
func (f *Factory) backdate() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays-1))*24*time.Hour +
		time.Duration(f.faker.Number(0, 23))*time.Hour +
		time.Duration(f.faker.Number(0, 59))*time.Minute
	return f.now().Add(-back)
}
