package graph

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/service"
)

// Subscriber is the read side of the change feed.
type Subscriber interface {
	Subscribe(ctx context.Context, topic notifications.Topic) <-chan notifications.Event
}

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	accounts *service.AccountService
	posts    *service.PostService
	comments *service.CommentService
	feed     Subscriber
}

func NewResolver(
	accounts *service.AccountService,
	posts *service.PostService,
	comments *service.CommentService,
	feed Subscriber,
) *Resolver {
	return &Resolver{
		accounts: accounts,
		posts:    posts,
		comments: comments,
		feed:     feed,
	}
}

// Queries

func (r *Resolver) Profile(ctx context.Context) (*UserResolver, error) {
	a, err := r.accounts.Profile(ctx)
	if err != nil {
		return nil, mapError(ctx, err, "profile")
	}
	return newUser(a), nil
}

func (r *Resolver) PublicProfile(ctx context.Context, args struct{ Username string }) (*UserResolver, error) {
	a, err := r.accounts.PublicProfile(ctx, args.Username)
	if err != nil {
		return nil, mapError(ctx, err, "publicProfile")
	}
	return newUser(a), nil
}

func (r *Resolver) AllUsers(ctx context.Context) (*[]*UserResolver, error) {
	all, err := r.accounts.AllUsers(ctx)
	if err != nil {
		return nil, mapError(ctx, err, "allUsers")
	}
	out := users(all)
	return &out, nil
}

func (r *Resolver) TotalPosts(ctx context.Context) (int32, error) {
	n, err := r.posts.TotalPosts(ctx)
	if err != nil {
		return 0, mapError(ctx, err, "totalPosts")
	}
	return int32(n), nil
}

func (r *Resolver) AllPosts(ctx context.Context, args struct{ Page *int32 }) ([]*PostResolver, error) {
	page := 1
	if args.Page != nil {
		page = int(*args.Page)
	}
	ps, err := r.posts.AllPosts(ctx, page)
	if err != nil {
		return nil, mapError(ctx, err, "allPosts")
	}
	return posts(ps), nil
}

func (r *Resolver) PostsByUser(ctx context.Context) ([]*PostResolver, error) {
	ps, err := r.posts.PostsByUser(ctx)
	if err != nil {
		return nil, mapError(ctx, err, "postsByUser")
	}
	return posts(ps), nil
}

func (r *Resolver) SinglePost(ctx context.Context, args struct{ PostID string }) (*PostResolver, error) {
	p, err := r.posts.SinglePost(ctx, args.PostID)
	if err != nil {
		return nil, mapError(ctx, err, "singlePost")
	}
	return newPost(p), nil
}

func (r *Resolver) Search(ctx context.Context, args struct{ Query string }) (*[]*PostResolver, error) {
	ps, err := r.posts.Search(ctx, args.Query)
	if err != nil {
		return nil, mapError(ctx, err, "search")
	}
	out := posts(ps)
	return &out, nil
}

func (r *Resolver) TotalCommentsPerPost(ctx context.Context, args struct{ PostID string }) (int32, error) {
	n, err := r.comments.TotalCommentsPerPost(ctx, args.PostID)
	if err != nil {
		return 0, mapError(ctx, err, "totalCommentsPerPost")
	}
	return int32(n), nil
}

func (r *Resolver) CommentsByPost(ctx context.Context, args struct{ PostID string }) ([]*CommentResolver, error) {
	cs, err := r.comments.CommentsByPost(ctx, args.PostID)
	if err != nil {
		return nil, mapError(ctx, err, "commentsByPost")
	}
	return comments(cs), nil
}

func (r *Resolver) AllComments(ctx context.Context) ([]*CommentResolver, error) {
	cs, err := r.comments.AllComments(ctx)
	if err != nil {
		return nil, mapError(ctx, err, "allComments")
	}
	return comments(cs), nil
}

// Mutations

func (r *Resolver) UserCreate(ctx context.Context) (*UserCreateResponseResolver, error) {
	a, err := r.accounts.Create(ctx)
	if err != nil {
		return nil, mapError(ctx, err, "userCreate")
	}
	return &UserCreateResponseResolver{a: a}, nil
}

func (r *Resolver) UserUpdate(ctx context.Context, args struct{ Input *UserUpdateInput }) (*UserResolver, error) {
	var in service.UpdateAccountInput
	if args.Input != nil {
		in = service.UpdateAccountInput{
			Username: args.Input.Username,
			Name:     args.Input.Name,
			Email:    args.Input.Email,
			About:    args.Input.About,
		}
		if args.Input.Images != nil {
			images := make([]models.Image, 0, len(*args.Input.Images))
			for _, img := range *args.Input.Images {
				if img != nil {
					images = append(images, img.model())
				}
			}
			in.Images = &images
		}
	}

	a, err := r.accounts.Update(ctx, in)
	if err != nil {
		return nil, mapError(ctx, err, "userUpdate")
	}
	return newUser(a), nil
}

func (r *Resolver) PostCreate(ctx context.Context, args struct{ Input PostCreateInput }) (*PostResolver, error) {
	p, err := r.posts.Create(ctx, service.CreatePostInput{
		Content: args.Input.Content,
		Image:   args.Input.Image.modelPtr(),
	})
	if err != nil {
		return nil, mapError(ctx, err, "postCreate")
	}
	return newPost(p), nil
}

func (r *Resolver) PostUpdate(ctx context.Context, args struct{ Input PostUpdateInput }) (*PostResolver, error) {
	p, err := r.posts.Update(ctx, service.UpdatePostInput{
		ID:      args.Input.ID,
		Content: args.Input.Content,
		Image:   args.Input.Image.modelPtr(),
	})
	if err != nil {
		return nil, mapError(ctx, err, "postUpdate")
	}
	return newPost(p), nil
}

func (r *Resolver) PostDelete(ctx context.Context, args struct{ PostID string }) (*PostResolver, error) {
	p, err := r.posts.Delete(ctx, args.PostID)
	if err != nil {
		return nil, mapError(ctx, err, "postDelete")
	}
	return newPost(p), nil
}

func (r *Resolver) CommentCreate(ctx context.Context, args struct {
	PostID string
	Input  CommentCreateInput
}) (*CommentResolver, error) {
	c, err := r.comments.Create(ctx, service.CreateCommentInput{
		PostID:  args.PostID,
		Comment: args.Input.Comment,
	})
	if err != nil {
		return nil, mapError(ctx, err, "commentCreate")
	}
	return newComment(c), nil
}

func (r *Resolver) CommentUpdate(ctx context.Context, args struct{ Input CommentUpdateInput }) (*CommentResolver, error) {
	c, err := r.comments.Update(ctx, service.UpdateCommentInput{
		ID:      args.Input.ID,
		Comment: args.Input.Comment,
	})
	if err != nil {
		return nil, mapError(ctx, err, "commentUpdate")
	}
	return newComment(c), nil
}

func (r *Resolver) CommentDelete(ctx context.Context, args struct{ CommentID string }) (*CommentResolver, error) {
	c, err := r.comments.Delete(ctx, args.CommentID)
	if err != nil {
		return nil, mapError(ctx, err, "commentDelete")
	}
	return newComment(c), nil
}

// Subscriptions

func (r *Resolver) PostAdded(ctx context.Context) <-chan *PostResolver {
	return r.postFeed(ctx, notifications.TopicPostAdded)
}

func (r *Resolver) PostUpdated(ctx context.Context) <-chan *PostResolver {
	return r.postFeed(ctx, notifications.TopicPostUpdated)
}

func (r *Resolver) PostDeleted(ctx context.Context) <-chan *PostResolver {
	return r.postFeed(ctx, notifications.TopicPostDeleted)
}

func (r *Resolver) CommentAdded(ctx context.Context) <-chan *CommentResolver {
	return r.commentFeed(ctx, notifications.TopicCommentAdded)
}

func (r *Resolver) CommentUpdated(ctx context.Context) <-chan *CommentResolver {
	return r.commentFeed(ctx, notifications.TopicCommentUpdated)
}

func (r *Resolver) CommentDeleted(ctx context.Context) <-chan *CommentResolver {
	return r.commentFeed(ctx, notifications.TopicCommentDeleted)
}

func (r *Resolver) postFeed(ctx context.Context, topic notifications.Topic) <-chan *PostResolver {
	return relay(ctx, r.feed.Subscribe(ctx, topic), func(ev notifications.Event) *PostResolver {
		return newPost(ev.Post)
	})
}

func (r *Resolver) commentFeed(ctx context.Context, topic notifications.Topic) <-chan *CommentResolver {
	return relay(ctx, r.feed.Subscribe(ctx, topic), func(ev notifications.Event) *CommentResolver {
		return newComment(ev.Comment)
	})
}

// relay converts broker events into resolvers until ctx ends or the broker
// closes the subscription.
func relay[T any](ctx context.Context, events <-chan notifications.Event, convert func(notifications.Event) T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for ev := range events {
			select {
			case out <- convert(ev):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
