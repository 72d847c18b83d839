package seed

import (
	"context"
	"fmt"
	"log/slog"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

// Options configures a seeding run.
type Options struct {
	Accounts        int
	PostsPerAccount int
	CommentsPerPost int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// Clean removes every post and its comments before seeding.
	Clean bool
	// DryRun builds entities without writing them.
	DryRun   bool
	RandSeed int64
}

// Presets are named option sets for the seed command.
var Presets = map[string]Options{
	"minimal": {Accounts: 3, PostsPerAccount: 2, CommentsPerPost: 1},
	"demo":    {Accounts: 12, PostsPerAccount: 5, CommentsPerPost: 3},
	"feed":    {Accounts: 30, PostsPerAccount: 10, CommentsPerPost: 4},
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	return o
}

// Summary counts what a run wrote.
type Summary struct {
	Accounts     int
	Posts        int
	Comments     int
	PostsRemoved int
}

// Run seeds store with accounts, their posts and comments from random
// accounts on each post.
func Run(ctx context.Context, store *repository.Store, opts Options) (Summary, error) {
	var sum Summary
	if opts.Accounts <= 0 {
		return sum, fmt.Errorf("seed: at least one account is required")
	}
	f := NewFactory(store, opts)
	log := observability.Logger.With(slog.Bool("dry_run", opts.DryRun))

	if opts.Clean && !opts.DryRun {
		removed, err := Clean(ctx, store)
		if err != nil {
			return sum, err
		}
		sum.PostsRemoved = removed
		log.InfoContext(ctx, "removed existing posts", slog.Int("posts", removed))
	}

	accounts := make([]*models.Account, 0, opts.Accounts)
	for i := 0; i < opts.Accounts; i++ {
		account, err := f.CreateAccount(ctx)
		if err != nil {
			return sum, err
		}
		accounts = append(accounts, account)
		sum.Accounts++
	}

	for _, owner := range accounts {
		for i := 0; i < opts.PostsPerAccount; i++ {
			post, err := f.CreatePost(ctx, owner)
			if err != nil {
				return sum, err
			}
			sum.Posts++

			for j := 0; j < opts.CommentsPerPost; j++ {
				author := accounts[f.faker.Number(0, len(accounts)-1)]
				if _, err := f.CreateComment(ctx, post, author); err != nil {
					return sum, err
				}
				sum.Comments++
			}
		}
	}

	log.InfoContext(ctx, "seed complete",
		slog.Int("accounts", sum.Accounts),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// Clean deletes every post together with its comments. Accounts are kept
// since the store exposes no account removal.
func Clean(ctx context.Context, store *repository.Store) (int, error) {
	removed := 0
	for {
		posts, err := store.Posts.List(ctx, 100, 0)
		if err != nil {
			return removed, fmt.Errorf("list posts: %w", err)
		}
		if len(posts) == 0 {
			return removed, nil
		}
		for _, p := range posts {
			if _, err := store.Comments.DeleteByPost(ctx, p.ID); err != nil {
				return removed, fmt.Errorf("delete comments of %s: %w", p.ID, err)
			}
			if _, err := store.Posts.Delete(ctx, p.ID); err != nil {
				return removed, fmt.Errorf("delete post %s: %w", p.ID, err)
			}
			removed++
		}
	}
}
