package models

import (
	"time"
)

// Message types.
const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// Chat represents a direct-message channel between exactly two users.
// Participant IDs are normalized so that User1ID < User2ID, which lets the
// unique index guarantee at most one chat per unordered pair and makes
// get-or-create conflict-safe under concurrent first messages.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	User1ID   uint      `gorm:"not null;uniqueIndex:idx_chat_pair" json:"user1_id"`
	User2ID   uint      `gorm:"not null;uniqueIndex:idx_chat_pair" json:"user2_id"`
	User1     User      `gorm:"foreignKey:User1ID" json:"user1"`
	User2     User      `gorm:"foreignKey:User2ID" json:"user2"`
	CreatedAt time.Time `json:"created_at"`

	// Partner and LastMessage are filled in per requesting user; not persisted.
	Partner     *PublicProfile `gorm:"-" json:"partner,omitempty"`
	LastMessage *Message       `gorm:"-" json:"last_message,omitempty"`
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID uint) *User {
	if c.User1ID == userID {
		return &c.User2
	}
	return &c.User1
}

// HasParticipant reports whether userID belongs to the chat.
func (c *Chat) HasParticipant(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Message represents a single chat message, append-only and ordered by
// creation time. MessageType is "file" when an upload accompanies the message.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index" json:"chat_id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	Sender      *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content     string    `gorm:"type:text" json:"content"`
	MessageType string    `gorm:"not null;default:'text'" json:"message_type"`
	FileURL     string    `json:"file_url"`
	CreatedAt   time.Time `json:"created_at"`
}
