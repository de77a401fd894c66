package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"kulan/internal/middleware"
	"kulan/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// formFile returns the first uploaded file found under any of the given
// field names, or nil. The profile image field appears as both snake_case
// and camelCase across clients.
func formFile(c *fiber.Ctx, names ...string) *multipart.FileHeader {
	for _, name := range names {
		if file, err := c.FormFile(name); err == nil && file != nil {
			return file
		}
	}
	return nil
}

// allowedUploadExts limits stored files to the media types the pages render.
var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".webm": true, ".mov": true,
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	".pdf": true, ".txt": true,
}

// saveUpload stores a multipart file under the upload directory with a random
// name and returns its public URL path. The original filename is discarded
// apart from its extension.
func (s *Server) saveUpload(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if file.Size > int64(s.config.MaxUploadMB)*1024*1024 {
		return "", models.NewValidationError(
			fmt.Sprintf("File too large (max %d MB)", s.config.MaxUploadMB))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", models.NewValidationError("Unsupported file type")
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(s.config.UploadDir, name)); err != nil {
		return "", models.NewInternalError(err)
	}

	middleware.UploadBytes.Add(float64(file.Size))
	return "/uploads/" + name, nil
}
