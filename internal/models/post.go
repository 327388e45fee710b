// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post represents an authored article. Comments are embedded in the row as
// an ordered JSONB sequence (insertion order is display order); the
// engagement counters are denormalized and kept in sync with the matching
// per-user sets by the engagement engine.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Category string `gorm:"index" json:"category"`
	// Duration is the estimated reading time in minutes.
	Duration int    `json:"duration"`
	ImageURL string `json:"image_url"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	LikeCount  int `json:"like_count"`
	SaveCount  int `json:"save_count"`
	ShareCount int `json:"share_count"`

	Comments datatypes.JSONSlice[Comment] `gorm:"type:jsonb" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a reply embedded in its parent post. The ID is globally unique
// so per-user liked-comment tracking can reference it across posts.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	UserID     uint      `json:"user_id"`
	AuthorName string    `json:"author_name"`
	LikeCount  int       `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// FindComment returns a pointer into the post's comment sequence for the
// given comment ID, or nil when the post has no such comment.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
