package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kulan/internal/config"
	"kulan/internal/models"
	"kulan/internal/repository"
	"kulan/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server backed by an in-memory database with the
// full route table mounted on a fresh Fiber app.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql DB: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Chat{},
		&models.Message{},
		&models.Report{},
		&models.AdminMessage{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		Port:          "0",
		SessionSecret: "test-secret-test-secret-test-secret",
		UploadDir:     t.TempDir(),
		MaxUploadMB:   5,
		WebDir:        t.TempDir(),
		Env:           "test",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	reportRepo := repository.NewReportRepository(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		chatRepo:    chatRepo,
		reportRepo:  reportRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.postService = service.NewPostService(postRepo, commentRepo)
	s.chatService = service.NewChatService(chatRepo, userRepo)
	s.adminService = service.NewAdminService(userRepo, postRepo, commentRepo, chatRepo, reportRepo)

	app := fiber.New()
	s.SetupRoutes(app)

	return s, app, db
}

// registerForm posts the registration form and returns the response.
func registerForm(t *testing.T, app *fiber.App, username, password, name string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("name", name)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	return resp
}

// loginJSON logs in through the API and returns the response plus the
// session token from the body (empty on failure).
func loginJSON(t *testing.T, app *fiber.App, username, password string) (*http.Response, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp, ""
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp, out.Token
}

// signupAndLogin registers a user and returns their bearer token.
func signupAndLogin(t *testing.T, app *fiber.App, username, password, name string) string {
	t.Helper()

	resp := registerForm(t, app, username, password, name)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", username, resp.StatusCode)
	}
	resp, token := loginJSON(t, app, username, password)
	if token == "" {
		t.Fatalf("login %s: expected token, got status %d", username, resp.StatusCode)
	}
	return token
}

// createAdmin inserts an admin account directly and returns its bearer token.
func createAdmin(t *testing.T, app *fiber.App, db *gorm.DB, username string) (uint, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("adminpass123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.User{
		Username: username,
		Password: string(hashed),
		Name:     "Admin",
		IsAdmin:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	_, token := loginJSON(t, app, username, "adminpass123")
	if token == "" {
		t.Fatalf("admin login failed")
	}
	return admin.ID, token
}

// doJSON performs an authenticated JSON request against the test app.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if payload != nil {
		body, _ := json.Marshal(payload)
		reader = strings.NewReader(string(body))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decodeBody decodes a JSON response body into dest.
func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
