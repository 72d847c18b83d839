package models

import "time"

// Comment is a reply to a post, owned by the account that wrote it.
type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"_id"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	PostID     string    `gorm:"size:36;not null;index" json:"postId"`
	Post       *Post     `gorm:"-" json:"post,omitempty"`
	PostedByID string    `gorm:"size:36;index" json:"postedById"`
	PostedBy   *Account  `gorm:"-" json:"postedBy,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
