// Command seed fills the configured entity store with demo accounts, posts
// and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/observability"
	"postboard/internal/seed"
)

func main() {
	accounts := flag.Int("accounts", 10, "Number of accounts to create")
	posts := flag.Int("posts", 4, "Posts per account")
	comments := flag.Int("comments", 2, "Comments per post")
	clean := flag.Bool("clean", false, "Delete existing posts and comments before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	preset := flag.String("preset", "", "Apply a named preset (minimal, demo, feed)")
	flag.Parse()

	opts := seed.Options{
		Accounts:        *accounts,
		PostsPerAccount: *posts,
		CommentsPerPost: *comments,
	}
	if *preset != "" {
		p, ok := seed.Presets[*preset]
		if !ok {
			log.Fatalf("Unknown preset %q", *preset)
		}
		opts = p
		log.Printf("Applying preset: %s (ignoring count flags)", *preset)
	}
	opts.Clean = *clean
	opts.DryRun = *dryRun

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Backend.Close(context.Background()) }()

	sum, err := seed.Run(ctx, store, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d accounts, %d posts, %d comments (removed %d posts)",
		sum.Accounts, sum.Posts, sum.Comments, sum.PostsRemoved)
}
