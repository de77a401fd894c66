package repository

import (
	"context"
	"errors"

	"kulan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines persistence operations for chats and messages.
type ChatRepository interface {
	// GetOrCreate returns the chat between the two users, creating it when
	// absent. The pair is normalized and the insert is conflict-safe, so
	// concurrent first messages cannot produce duplicate chat rows.
	GetOrCreate(ctx context.Context, userA, userB uint) (*models.Chat, error)
	GetByID(ctx context.Context, id uint) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Chat, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, chatID uint) ([]*models.Message, error)
	CountMessages(ctx context.Context) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetOrCreate(ctx context.Context, userA, userB uint) (*models.Chat, error) {
	u1, u2 := userA, userB
	if u1 > u2 {
		u1, u2 = u2, u1
	}

	chat := models.Chat{User1ID: u1, User2ID: u2}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&chat)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}

	// On conflict the insert is a no-op and the existing row must be fetched.
	var existing models.Chat
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		First(&existing).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &existing, nil
}

func (r *chatRepository) GetByID(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		First(&chat, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, chat := range chats {
		partner := chat.OtherParticipant(userID).Public()
		chat.Partner = &partner

		var last models.Message
		lastErr := r.db.WithContext(ctx).
			Where("chat_id = ?", chat.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		switch {
		case lastErr == nil:
			chat.LastMessage = &last
		case errors.Is(lastErr, gorm.ErrRecordNotFound):
			// Chat without messages yet.
		default:
			return nil, models.NewInternalError(lastErr)
		}
	}
	return chats, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *chatRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
