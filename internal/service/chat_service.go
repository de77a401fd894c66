package service

import (
	"context"
	"strings"

	"kulan/internal/models"
	"kulan/internal/repository"
)

const maxMessageContentLen = 10000 // 10K characters

// ChatService provides direct-messaging business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	ChatID   uint
	SenderID uint
	Content  string
	FileURL  string
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo}
}

// GetOrCreateChat returns the chat between the current user and the other
// user, creating it when absent.
func (s *ChatService) GetOrCreateChat(ctx context.Context, userID, otherUserID uint) (*models.Chat, error) {
	if otherUserID == 0 {
		return nil, models.NewValidationError("A chat partner is required")
	}
	if otherUserID == userID {
		return nil, models.NewValidationError("Cannot start a chat with yourself")
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other.IsBlocked {
		return nil, models.NewForbiddenError("Cannot start a chat with this user")
	}

	chat, err := s.chatRepo.GetOrCreate(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	partner := chat.OtherParticipant(userID).Public()
	chat.Partner = &partner
	return chat, nil
}

// ListChats returns the user's chats with partner identity and last message.
func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]*models.Chat, error) {
	return s.chatRepo.ListForUser(ctx, userID)
}

// SendMessage verifies the sender is a participant before inserting. The
// message type is derived from the presence of an uploaded file.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.FileURL == "" {
		return nil, models.NewValidationError("Message content or a file is required")
	}
	if len(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	chat, err := s.chatRepo.GetByID(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(in.SenderID) {
		return nil, models.NewForbiddenError("You are not a participant in this chat")
	}

	messageType := models.MessageTypeText
	if in.FileURL != "" {
		messageType = models.MessageTypeFile
	}

	message := &models.Message{
		ChatID:      in.ChatID,
		SenderID:    in.SenderID,
		Content:     content,
		MessageType: messageType,
		FileURL:     in.FileURL,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if sender, err := s.userRepo.GetByID(ctx, in.SenderID); err == nil {
		message.Sender = sender
	}
	return message, nil
}

// ListMessages returns the chat's messages ascending by creation time,
// joined with sender identity. Participants only.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID uint) ([]*models.Message, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant in this chat")
	}
	return s.chatRepo.ListMessages(ctx, chatID)
}
