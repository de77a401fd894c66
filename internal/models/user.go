// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account in the Kulan application.
//
// Usernames are stored lowercased so uniqueness is case-insensitive.
// The password column holds a bcrypt hash and is never serialized.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Password     string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	ProfileImage string `json:"profile_image"`
	Bio          string `json:"bio"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`
	IsBlocked    bool   `gorm:"default:false" json:"is_blocked"`
	// PostsCount is not persisted; computed at query time for admin listings
	PostsCount int64     `gorm:"->" json:"posts_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Posts      []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// PublicProfile is the reduced user view returned by /api/user-info and
// embedded in listings where the full record would leak admin/blocked flags.
type PublicProfile struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
	IsAdmin      bool   `json:"is_admin"`
}

// Public returns the reduced view of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		IsAdmin:      u.IsAdmin,
	}
}
