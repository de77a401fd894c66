package server

import (
	"kulan/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateReportRequest is the JSON body for filing a moderation report.
type CreateReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Reason     string `json:"reason"`
}

// CreateReport files a moderation report against a post, user or comment.
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	report, err := s.adminService.FileReport(
		c.Context(), currentUserID(c), req.TargetType, req.TargetID, req.Reason)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetNotices returns the admin broadcast notices visible to every user,
// newest first.
func (s *Server) GetNotices(c *fiber.Ctx) error {
	notices, err := s.adminService.ListNotices(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(notices)
}
