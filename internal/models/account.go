package models

import "time"

// Account is a registered user, keyed by a unique handle and a unique email.
type Account struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Username  string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Name      string    `json:"name"`
	Email     string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	Images    []Image   `gorm:"serializer:json" json:"images"`
	About     string    `gorm:"type:text" json:"about"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the collection name shared with the document store.
func (Account) TableName() string { return "users" }

// PublicView strips an account down to the fields exposed when it is
// embedded as the owner of a post or comment.
func (a *Account) PublicView() *Account {
	if a == nil {
		return nil
	}
	images := make([]Image, len(a.Images))
	copy(images, a.Images)
	return &Account{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Images:   images,
	}
}

// AccountUpdate carries the fields a caller may change on its own account.
// Nil fields are left untouched.
type AccountUpdate struct {
	Username *string
	Name     *string
	Email    *string
	Images   *[]Image
	About    *string
}
