package server

import (
	"strings"

	"kulan/internal/models"
	"kulan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdatePasswordRequest is the JSON body for a password change.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// GetUserInfo returns the authenticated user's identity for the page header.
func (s *Server) GetUserInfo(c *fiber.Ctx) error {
	userID := currentUserID(c)
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":            user.ID,
		"username":      user.Username,
		"name":          user.Name,
		"profile_image": user.ProfileImage,
		"bio":           user.Bio,
		"is_admin":      user.IsAdmin,
	})
}

// GetUsers lists all other unblocked users as chat partner candidates.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.Context(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return c.JSON(profiles)
}

// SearchUsers finds users by username or display name.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.JSON([]models.PublicProfile{})
	}

	users, err := s.userRepo.Search(c.Context(), query, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return c.JSON(profiles)
}

// UpdateProfile updates the authenticated user's profile. Accepts multipart
// form data so the profile image can be replaced in the same request.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: c.FormValue("username"),
		Name:     c.FormValue("name"),
		Bio:      c.FormValue("bio"),
	}

	if file := formFile(c, "profile_image", "profileImage"); file != nil {
		url, err := s.saveUpload(c, file)
		if err != nil {
			return s.respondError(c, err)
		}
		in.ProfileImage = url
	}

	user, err := s.userService.UpdateProfile(c.Context(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user.Public())
}

// UpdatePassword changes the authenticated user's password after verifying
// the current one.
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdatePassword(c.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
