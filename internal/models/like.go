package models

import (
	"time"
)

// Like represents a user's like on a post.
// The combination of PostID and UserID is unique so the like toggle can be
// expressed as an atomic insert-on-conflict instead of a check-then-act read.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
