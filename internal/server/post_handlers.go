package server

import (
	"kulan/internal/models"
	"kulan/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest is the JSON body for adding a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// GetPosts returns the feed for the authenticated user: all public posts
// plus the user's own private posts, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.Context(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles the post composer form. It accepts multipart form data
// with optional image, video and audio attachments and redirects browsers
// back to the feed on success.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{
		UserID:  currentUserID(c),
		Content: c.FormValue("content"),
		Privacy: c.FormValue("privacy"),
	}

	for field, dest := range map[string]*string{
		"image": &in.ImageURL,
		"video": &in.VideoURL,
		"audio": &in.AudioURL,
	} {
		file, err := c.FormFile(field)
		if err != nil || file == nil {
			continue
		}
		url, err := s.saveUpload(c, file)
		if err != nil {
			return s.respondError(c, err)
		}
		*dest = url
	}

	post, err := s.postService.CreatePost(c.Context(), in)
	if err != nil {
		return s.respondError(c, err)
	}

	if wantsHTML(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ToggleLike flips the like state for the post and returns the new state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.Context(), postID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// CreateComment appends a comment to the post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.CreateComment(c.Context(), postID, currentUserID(c), req.Content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"commentId": comment.ID,
	})
}

// GetComments returns the post's comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.ListComments(c.Context(), postID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}
