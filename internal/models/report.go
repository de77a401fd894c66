package models

import (
	"time"
)

// Report target types.
const (
	ReportTargetPost    = "post"
	ReportTargetUser    = "user"
	ReportTargetComment = "comment"
)

// Report statuses.
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusDismissed = "dismissed"
)

// Report represents a user-filed moderation report against a post, user or
// comment. Reports are reviewed through the admin panel.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReporterID uint      `gorm:"not null;index" json:"reporter_id"`
	Reporter   User      `gorm:"foreignKey:ReporterID" json:"reporter"`
	TargetType string    `gorm:"not null" json:"target_type"`
	TargetID   uint      `gorm:"not null" json:"target_id"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	Status     string    `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AdminMessage is a broadcast notice published by an admin and readable by
// every logged-in user.
type AdminMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null" json:"admin_id"`
	Admin     User      `gorm:"foreignKey:AdminID" json:"admin"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
