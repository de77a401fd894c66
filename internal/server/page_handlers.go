package server

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

// pageAllowlist names the HTML pages that may be served by the catch-all
// page route. Anything else is a 404, which keeps path traversal out of
// the static page handler.
var pageAllowlist = map[string]bool{
	"login.html":    true,
	"register.html": true,
	"index.html":    true,
	"profile.html":  true,
	"chats.html":    true,
	"admin.html":    true,
}

// Index serves the feed page to authenticated users and redirects everyone
// else to the login page.
func (s *Server) Index(c *fiber.Ctx) error {
	if _, ok := s.sessionUserID(c); !ok {
		return c.Redirect("/login.html", fiber.StatusSeeOther)
	}
	return c.SendFile(filepath.Join(s.config.WebDir, "index.html"))
}

// ServePage serves an allow-listed HTML page by name.
func (s *Server) ServePage(c *fiber.Ctx) error {
	page := c.Params("page")
	if !pageAllowlist[page] {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	return c.SendFile(filepath.Join(s.config.WebDir, page))
}
