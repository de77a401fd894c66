package server

import (
	"kulan/internal/models"
	"kulan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateChatRequest is the JSON body for opening a chat with another user.
type CreateChatRequest struct {
	UserID uint `json:"user_id"`
}

// GetChats lists the authenticated user's chats with partner identity and
// the latest message, most recently active first.
func (s *Server) GetChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListChats(c.Context(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(chats)
}

// GetOrCreateChat returns the chat between the authenticated user and the
// requested user, creating it when it does not exist yet. Repeated calls
// return the same chat regardless of which side initiates.
func (s *Server) GetOrCreateChat(c *fiber.Ctx) error {
	var req CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	chat, err := s.chatService.GetOrCreateChat(c.Context(), currentUserID(c), req.UserID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(chat)
}

// GetMessages returns the chat's messages oldest first. Participants only.
func (s *Server) GetMessages(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	messages, err := s.chatService.ListMessages(c.Context(), chatID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage posts a message into the chat. It accepts multipart form data
// so a file attachment can ride along with (or replace) the text content.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.SendMessageInput{
		ChatID:   chatID,
		SenderID: currentUserID(c),
		Content:  c.FormValue("content"),
	}

	// JSON clients send {"content": "..."} instead of a form.
	if in.Content == "" {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err == nil {
			in.Content = body.Content
		}
	}

	if file, err := c.FormFile("file"); err == nil && file != nil {
		url, err := s.saveUpload(c, file)
		if err != nil {
			return s.respondError(c, err)
		}
		in.FileURL = url
	}

	message, err := s.chatService.SendMessage(c.Context(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
