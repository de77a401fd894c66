package repository

import (
	"context"
	"testing"

	"kulan/internal/cache"
	"kulan/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDuplicateUsername(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "amina", Password: "hash", Name: "Amina"}))

	err := repo.Create(ctx, &models.User{
		Username: "amina", Password: "hash", Name: "Impostor"})
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE_USERNAME", appErr.Code)
}

func TestGetByUsernameCaseInsensitive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mustCreateUser(t, db, "amina")

	user, err := repo.GetByUsername(ctx, "AMINA")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "amina", user.Username)

	// A miss is (nil, nil), not an error.
	user, err = repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestDeleteCascades(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	amina := mustCreateUser(t, db, "amina")
	bashir := mustCreateUser(t, db, "bashir")

	post := &models.Post{UserID: amina.ID, Content: "doomed", Privacy: models.PrivacyPublic}
	require.NoError(t, db.Create(post).Error)
	// bashir engages with amina's post.
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: bashir.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{
		PostID: post.ID, UserID: bashir.ID, Content: "doomed too"}).Error)
	// amina messages and reports.
	chat := &models.Chat{User1ID: amina.ID, User2ID: bashir.ID}
	require.NoError(t, db.Create(chat).Error)
	require.NoError(t, db.Create(&models.Message{
		ChatID: chat.ID, SenderID: amina.ID, Content: "bye", MessageType: models.MessageTypeText}).Error)
	require.NoError(t, db.Create(&models.Report{
		ReporterID: amina.ID, TargetType: models.ReportTargetPost, TargetID: post.ID,
		Reason: "spam", Status: models.ReportStatusPending}).Error)

	require.NoError(t, repo.Delete(ctx, amina.ID))

	counts := map[string]any{
		"posts":    &models.Post{},
		"likes":    &models.Like{},
		"comments": &models.Comment{},
		"messages": &models.Message{},
		"reports":  &models.Report{},
	}
	for name, model := range counts {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "expected no %s to remain", name)
	}

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

// Not parallel: swaps the package-level cache client.
func TestGetByIDCacheKeepsPasswordHash(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.SetClient(nil)

	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	amina := mustCreateUser(t, db, "amina")

	first, err := repo.GetByID(ctx, amina.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Password)

	// The second read is served from Redis and must still carry the hash;
	// the JSON view of a user strips it, so the cache needs its own shape.
	second, err := repo.GetByID(ctx, amina.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Password, second.Password)
	assert.Equal(t, "amina", second.Username)
}

func TestSetBlockedMissingUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	err := repo.SetBlocked(context.Background(), 9999, true)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
