// Package models contains data structures for the application's domain models.
package models

import "time"

// PostsPageSize is the fixed page size used by the paginated post feed.
const PostsPageSize = 6

// Post is a piece of content owned by exactly one account.
type Post struct {
	ID         string   `gorm:"primaryKey;size:36" json:"_id"`
	Content    string   `gorm:"type:text;not null" json:"content"`
	Image      Image    `gorm:"serializer:json" json:"image"`
	PostedByID string   `gorm:"size:36;not null;index" json:"postedById"`
	PostedBy   *Account `gorm:"-" json:"postedBy,omitempty"`
	// Comments is a legacy embedded array. It is stored and read back as-is
	// and no mutation writes to it.
	Comments  []map[string]any `gorm:"serializer:json" json:"comments,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
