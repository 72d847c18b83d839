package graph

import (
	"postboard/internal/models"

	"github.com/graph-gophers/graphql-go"
)

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type ImageResolver struct {
	img models.Image
}

func (r *ImageResolver) URL() *string { return optString(r.img.URL) }
func (r *ImageResolver) PublicID() *string { return optString(r.img.PublicID) }

type UserResolver struct {
	a *models.Account
}

func newUser(a *models.Account) *UserResolver {
	if a == nil {
		return nil
	}
	return &UserResolver{a: a}
}

func (r *UserResolver) ID() graphql.ID { return graphql.ID(r.a.ID) }
func (r *UserResolver) Username() *string { return optString(r.a.Username) }
func (r *UserResolver) Name() *string { return optString(r.a.Name) }
func (r *UserResolver) Email() *string { return optString(r.a.Email) }
func (r *UserResolver) About() *string { return optString(r.a.About) }
func (r *UserResolver) CreatedAt() *DateTime { return newDateTime(r.a.CreatedAt) }
func (r *UserResolver) UpdatedAt() *DateTime { return newDateTime(r.a.UpdatedAt) }

func (r *UserResolver) Images() *[]*ImageResolver {
	if r.a.Images == nil {
		return nil
	}
	out := make([]*ImageResolver, len(r.a.Images))
	for i, img := range r.a.Images {
		out[i] = &ImageResolver{img: img}
	}
	return &out
}

func users(accounts []*models.Account) []*UserResolver {
	out := make([]*UserResolver, len(accounts))
	for i, a := range accounts {
		out[i] = newUser(a)
	}
	return out
}

// UserCreateResponseResolver is the reduced account returned by userCreate.
type UserCreateResponseResolver struct {
	a *models.Account
}

func (r *UserCreateResponseResolver) ID() graphql.ID { return graphql.ID(r.a.ID) }
func (r *UserCreateResponseResolver) Username() string { return r.a.Username }
func (r *UserCreateResponseResolver) Email() string { return r.a.Email }

type PostResolver struct {
	p *models.Post
}

func newPost(p *models.Post) *PostResolver {
	if p == nil {
		return nil
	}
	return &PostResolver{p: p}
}

func (r *PostResolver) ID() graphql.ID { return graphql.ID(r.p.ID) }
func (r *PostResolver) Content() string { return r.p.Content }
func (r *PostResolver) Image() *ImageResolver { return &ImageResolver{img: r.p.Image} }
func (r *PostResolver) PostedBy() *UserResolver { return newUser(r.p.PostedBy) }
func (r *PostResolver) CreatedAt() *DateTime { return newDateTime(r.p.CreatedAt) }
func (r *PostResolver) UpdatedAt() *DateTime { return newDateTime(r.p.UpdatedAt) }

func posts(ps []*models.Post) []*PostResolver {
	out := make([]*PostResolver, len(ps))
	for i, p := range ps {
		out[i] = newPost(p)
	}
	return out
}

type CommentResolver struct {
	c *models.Comment
}

func newComment(c *models.Comment) *CommentResolver {
	if c == nil {
		return nil
	}
	return &CommentResolver{c: c}
}

func (r *CommentResolver) ID() graphql.ID { return graphql.ID(r.c.ID) }
func (r *CommentResolver) Comment() string { return r.c.Comment }
func (r *CommentResolver) Post() *PostResolver { return newPost(r.c.Post) }
func (r *CommentResolver) PostedBy() *UserResolver { return newUser(r.c.PostedBy) }
func (r *CommentResolver) CreatedAt() *DateTime { return newDateTime(r.c.CreatedAt) }
func (r *CommentResolver) UpdatedAt() *DateTime { return newDateTime(r.c.UpdatedAt) }

func comments(cs []*models.Comment) []*CommentResolver {
	out := make([]*CommentResolver, len(cs))
	for i, c := range cs {
		out[i] = newComment(c)
	}
	return out
}

// ImageInput mirrors the ImageInput schema type.
type ImageInput struct {
	URL      *string
	PublicID *string
}

func (in *ImageInput) model() models.Image {
	var img models.Image
	if in == nil {
		return img
	}
	if in.URL != nil {
		img.URL = *in.URL
	}
	if in.PublicID != nil {
		img.PublicID = *in.PublicID
	}
	return img
}

func (in *ImageInput) modelPtr() *models.Image {
	if in == nil {
		return nil
	}
	img := in.model()
	return &img
}

type UserUpdateInput struct {
	Username *string
	Name     *string
	Email    *string
	Images   *[]*ImageInput
	About    *string
}

type PostCreateInput struct {
	Content string
	Image   *ImageInput
}

type PostUpdateInput struct {
	ID      string
	Content string
	Image   *ImageInput
}

type CommentCreateInput struct {
	Comment string
}

type CommentUpdateInput struct {
	ID      string
	Comment string
}
