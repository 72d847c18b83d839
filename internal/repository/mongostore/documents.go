package mongostore

import (
	"time"

	"postboard/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type accountDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Name      string             `bson:"name,omitempty"`
	Email     string             `bson:"email"`
	Images    []models.Image     `bson:"images"`
	About     string             `bson:"about,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Image     models.Image       `bson:"image"`
	PostedBy  primitive.ObjectID `bson:"postedBy"`
	Comments  []map[string]any   `bson:"comments,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Comment   string             `bson:"comment"`
	Post      primitive.ObjectID `bson:"post"`
	PostedBy  primitive.ObjectID `bson:"postedBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// now returns the current time at the store's millisecond precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// createdAt keeps a caller-supplied creation time, such as a seeded one,
// and falls back to ts.
func createdAt(given, ts time.Time) time.Time {
	if given.IsZero() {
		return ts
	}
	return given.UTC().Truncate(time.Millisecond)
}

func (d *accountDocument) model() *models.Account {
	return &models.Account{
		ID:        hexOrEmpty(d.ID),
		Username:  d.Username,
		Name:      d.Name,
		Email:     d.Email,
		Images:    d.Images,
		About:     d.About,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *postDocument) model() *models.Post {
	return &models.Post{
		ID:         hexOrEmpty(d.ID),
		Content:    d.Content,
		Image:      d.Image,
		PostedByID: hexOrEmpty(d.PostedBy),
		Comments:   d.Comments,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d *commentDocument) model() *models.Comment {
	return &models.Comment{
		ID:         hexOrEmpty(d.ID),
		Comment:    d.Comment,
		PostID:     hexOrEmpty(d.Post),
		PostedByID: hexOrEmpty(d.PostedBy),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func accountModel(d *accountDocument) *models.Account { return d.model() }
func postModel(d *postDocument) *models.Post          { return d.model() }
func commentModel(d *commentDocument) *models.Comment { return d.model() }
