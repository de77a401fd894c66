package server

import (
	"strconv"
	"strings"
	"time"

	"kulan/internal/cache"
	"kulan/internal/middleware"
	"kulan/internal/models"
	"kulan/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LoginRequest is the JSON body accepted by the login endpoint. The same
// fields are also accepted as form values from the login page.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles the registration form. It accepts multipart form data with
// an optional profile image and redirects browsers to the login page on
// success.
func (s *Server) Register(c *fiber.Ctx) error {
	in := service.RegisterInput{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
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

	user, err := s.userService.Register(c.Context(), in)
	if err != nil {
		return s.respondError(c, err)
	}

	if wantsHTML(c) {
		return c.Redirect("/login.html", fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// Login verifies credentials, issues a session token, and sets it as an
// httpOnly cookie. The token is also returned in the body for API clients.
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		req.Username = c.FormValue("username")
		req.Password = c.FormValue("password")
	}
	if req.Username == "" {
		req.Username = c.FormValue("username")
		req.Password = c.FormValue("password")
	}

	user, err := s.userService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		middleware.LoginAttempts.WithLabelValues("failure").Inc()
		return s.respondError(c, err)
	}
	middleware.LoginAttempts.WithLabelValues("success").Inc()

	token, err := s.generateSessionToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	if wantsHTML(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.Public(),
	})
}

// Logout revokes the current session token and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	tokenString := c.Cookies(SessionCookieName)
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	// Blacklist the token's jti for its remaining lifetime so it cannot be
	// replayed after logout.
	if tokenString != "" {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			return []byte(s.config.SessionSecret), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				jti, _ := claims["jti"].(string)
				ttl := sessionTTL
				if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
					ttl = time.Until(exp.Time)
				}
				if jti != "" && ttl > 0 {
					_ = cache.RevokeSession(c.Context(), jti, ttl)
				}
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	if wantsHTML(c) {
		return c.Redirect("/login.html", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"success": true})
}

// generateSessionToken creates a signed session JWT for the user.
func (s *Server) generateSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"admin":    user.IsAdmin,
		"iss":      "kulan-api",
		"aud":      "kulan-client",
		"iat":      now.Unix(),
		"exp":      now.Add(sessionTTL).Unix(),
		"jti":      uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}

// respondError maps an application error onto the right HTTP status.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*models.AppError); ok {
		status := fiber.StatusInternalServerError
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "DUPLICATE_USERNAME":
			status = fiber.StatusConflict
		}
		return models.RespondWithError(c, status, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// wantsHTML reports whether the request came from a browser form rather
// than an API client.
func wantsHTML(c *fiber.Ctx) bool {
	accept := c.Get("Accept")
	return strings.Contains(accept, "text/html")
}
