// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post privacy values.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Post represents a feed post. A post may carry text content and at most one
// image, video and audio attachment, referenced by relative upload paths.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Content  string `gorm:"type:text" json:"content"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
	Privacy  string `gorm:"not null;default:'public';index" json:"privacy"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"user_liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMedia reports whether the post carries at least one attachment.
func (p *Post) HasMedia() bool {
	return p.ImageURL != "" || p.VideoURL != "" || p.AudioURL != ""
}
