package server

import (
	"kulan/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateReportStatusRequest is the JSON body for resolving a report.
type UpdateReportStatusRequest struct {
	Status string `json:"status"`
}

// CreateNoticeRequest is the JSON body for publishing an admin notice.
type CreateNoticeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetAdminStats returns the dashboard counts. All four counts are gathered
// concurrently and the response waits for the slowest one.
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.GetStats(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}

// GetAdminUsers lists every account with its post count.
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	users, err := s.adminService.ListUsers(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(users)
}

// ToggleBlockUser flips the block flag on the account and returns the new
// state. Blocked users cannot log in; their existing sessions keep working
// until they expire.
func (s *Server) ToggleBlockUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blocked, err := s.adminService.ToggleBlock(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": blocked})
}

// DeleteUser removes the account along with its posts, comments, likes,
// messages and reports.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adminService.DeleteUser(c.Context(), userID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetAdminReports lists moderation reports, optionally filtered by status.
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	reports, err := s.adminService.ListReports(c.Context(), c.Query("status"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(reports)
}

// UpdateReportStatus marks a report reviewed or dismissed.
func (s *Server) UpdateReportStatus(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.adminService.ResolveReport(c.Context(), reportID, req.Status); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// CreateNotice publishes a broadcast notice visible to every user.
func (s *Server) CreateNotice(c *fiber.Ctx) error {
	var req CreateNoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	notice, err := s.adminService.PublishNotice(c.Context(), currentUserID(c), req.Title, req.Content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(notice)
}
