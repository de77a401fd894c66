package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kulan/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPostForm submits the post composer form as the given user.
func createPostForm(t *testing.T, app *fiber.App, token, content, privacy string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("content", content)
	if privacy != "" {
		form.Set("privacy", privacy)
	}

	req := httptest.NewRequest(http.MethodPost, "/create-post", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return resp
}

func fetchFeed(t *testing.T, app *fiber.App, token string) []models.Post {
	t.Helper()
	resp := doJSON(t, app, http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	return posts
}

func TestCreatePostAndFeedOrder(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	token := signupAndLogin(t, app, "amina", "pass1234", "Amina A")

	for _, content := range []string{"first post", "second post", "third post"} {
		resp := createPostForm(t, app, token, content, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	posts := fetchFeed(t, app, token)
	require.Len(t, posts, 3)
	// Newest first.
	assert.Equal(t, "third post", posts[0].Content)
	assert.Equal(t, "second post", posts[1].Content)
	assert.Equal(t, "first post", posts[2].Content)
}

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	token := signupAndLogin(t, app, "amina", "pass1234", "Amina A")

	resp := createPostForm(t, app, token, "   ", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = createPostForm(t, app, token, "hello", "secret")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPrivatePostsHiddenFromOthers(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	amina := signupAndLogin(t, app, "amina", "pass1234", "Amina A")
	bashir := signupAndLogin(t, app, "bashir", "pass1234", "Bashir B")

	require.Equal(t, http.StatusCreated,
		createPostForm(t, app, amina, "public thought", models.PrivacyPublic).StatusCode)
	require.Equal(t, http.StatusCreated,
		createPostForm(t, app, amina, "private thought", models.PrivacyPrivate).StatusCode)

	// The owner sees both.
	aminaFeed := fetchFeed(t, app, amina)
	assert.Len(t, aminaFeed, 2)

	// Everyone else sees only the public one.
	bashirFeed := fetchFeed(t, app, bashir)
	require.Len(t, bashirFeed, 1)
	assert.Equal(t, "public thought", bashirFeed[0].Content)
}

func TestPrivatePostNotReachableByIDForOthers(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	amina := signupAndLogin(t, app, "amina", "pass1234", "Amina A")
	bashir := signupAndLogin(t, app, "bashir", "pass1234", "Bashir B")

	require.Equal(t, http.StatusCreated,
		createPostForm(t, app, amina, "just for me", models.PrivacyPrivate).StatusCode)
	posts := fetchFeed(t, app, amina)
	require.Len(t, posts, 1)
	postID := posts[0].ID

	// Knowing the ID does not open up a private post to another user.
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), bashir, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comment", postID), bashir,
		map[string]string{"content": "found it"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), bashir, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var likes, comments int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)

	// The owner still interacts normally.
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), amina, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToggleLike(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	token := signupAndLogin(t, app, "amina", "pass1234", "Amina A")
	require.Equal(t, http.StatusCreated,
		createPostForm(t, app, token, "like me", "").StatusCode)

	posts := fetchFeed(t, app, token)
	require.Len(t, posts, 1)
	postID := posts[0].ID

	likePath := fmt.Sprintf("/api/posts/%d/like", postID)

	var out struct {
		Liked bool `json:"liked"`
	}

	// Like, unlike, like again.
	resp := doJSON(t, app, http.MethodPost, likePath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.True(t, out.Liked)

	resp = doJSON(t, app, http.MethodPost, likePath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.False(t, out.Liked)

	resp = doJSON(t, app, http.MethodPost, likePath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.True(t, out.Liked)

	// The feed reflects the final state.
	posts = fetchFeed(t, app, token)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Liked)
	assert.Equal(t, 1, posts[0].LikesCount)
}

func TestLikeMissingPost(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	token := signupAndLogin(t, app, "amina", "pass1234", "Amina A")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/9999/like", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComments(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	amina := signupAndLogin(t, app, "amina", "pass1234", "Amina A")
	bashir := signupAndLogin(t, app, "bashir", "pass1234", "Bashir B")

	require.Equal(t, http.StatusCreated,
		createPostForm(t, app, amina, "discuss", "").StatusCode)
	posts := fetchFeed(t, app, amina)
	require.Len(t, posts, 1)
	postID := posts[0].ID

	commentPath := fmt.Sprintf("/api/posts/%d/comment", postID)
	commentsPath := fmt.Sprintf("/api/posts/%d/comments", postID)

	resp := doJSON(t, app, http.MethodPost, commentPath, bashir,
		map[string]string{"content": "first!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Success   bool `json:"success"`
		CommentID uint `json:"commentId"`
	}
	decodeBody(t, resp, &created)
	assert.True(t, created.Success)
	assert.NotZero(t, created.CommentID)

	resp = doJSON(t, app, http.MethodPost, commentPath, amina,
		map[string]string{"content": "thanks for stopping by"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Empty comments are rejected.
	resp = doJSON(t, app, http.MethodPost, commentPath, amina,
		map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Oldest first.
	resp = doJSON(t, app, http.MethodGet, commentsPath, amina, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.Comment
	decodeBody(t, resp, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, "first!", comments[0].Content)
	assert.Equal(t, "thanks for stopping by", comments[1].Content)

	// The feed's comment count reflects both.
	posts = fetchFeed(t, app, amina)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].CommentsCount)
}
