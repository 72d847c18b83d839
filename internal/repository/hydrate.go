package repository

import (
	"context"

	"postboard/internal/models"
)

// Hydrator fills references on records read from the store.
// Depth is fixed: posts get their owner; comments get their owner,
// their post and the post's owner. Owners are reduced to their public view.
// References that no longer resolve are left nil.
type Hydrator struct {
	accounts AccountRepository
	posts    PostRepository
}

// NewHydrator creates a Hydrator over the given repositories.
func NewHydrator(accounts AccountRepository, posts PostRepository) *Hydrator {
	return &Hydrator{accounts: accounts, posts: posts}
}

// Post hydrates a single post.
func (h *Hydrator) Post(ctx context.Context, post *models.Post) error {
	if post == nil {
		return nil
	}
	return h.Posts(ctx, []*models.Post{post})
}

// Posts hydrates owners for a batch of posts with one account lookup.
func (h *Hydrator) Posts(ctx context.Context, posts []*models.Post) error {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostedByID)
	}
	owners, err := h.ownersByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.PostedBy = owners[p.PostedByID]
	}
	return nil
}

// Comment hydrates a single comment.
func (h *Hydrator) Comment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return nil
	}
	return h.Comments(ctx, []*models.Comment{comment})
}

// Comments hydrates a batch of comments with one post lookup and one account lookup.
func (h *Hydrator) Comments(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	postIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		postIDs = append(postIDs, c.PostID)
	}
	posts, err := h.posts.GetByIDs(ctx, unique(postIDs))
	if err != nil {
		return err
	}
	postsByID := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		postsByID[p.ID] = p
	}

	accountIDs := make([]string, 0, len(comments)+len(posts))
	for _, c := range comments {
		accountIDs = append(accountIDs, c.PostedByID)
	}
	for _, p := range posts {
		accountIDs = append(accountIDs, p.PostedByID)
	}
	owners, err := h.ownersByID(ctx, accountIDs)
	if err != nil {
		return err
	}

	for _, p := range posts {
		p.PostedBy = owners[p.PostedByID]
	}
	for _, c := range comments {
		c.PostedBy = owners[c.PostedByID]
		if p, ok := postsByID[c.PostID]; ok {
			// each comment holds its own copy of the post
			post := *p
			c.Post = &post
		} else {
			c.Post = nil
		}
	}
	return nil
}

func (h *Hydrator) ownersByID(ctx context.Context, ids []string) (map[string]*models.Account, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return map[string]*models.Account{}, nil
	}
	accounts, err := h.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]*models.Account, len(accounts))
	for _, a := range accounts {
		owners[a.ID] = a.PublicView()
	}
	return owners, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
