package repository

import (
	"context"
	"testing"

	"kulan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeIsConflictSafe(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := mustCreateUser(t, db, "amina")
	post := &models.Post{UserID: user.ID, Content: "like target", Privacy: models.PrivacyPublic}
	require.NoError(t, repo.Create(ctx, post))

	inserted, err := repo.Like(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	// A second insert for the same (post, user) is swallowed by the unique
	// index instead of erroring or double-counting.
	inserted, err = repo.Like(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Unlike(ctx, post.ID, user.ID))
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFeedVisibilityAndOrder(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	amina := mustCreateUser(t, db, "amina")
	bashir := mustCreateUser(t, db, "bashir")

	require.NoError(t, repo.Create(ctx, &models.Post{
		UserID: amina.ID, Content: "older public", Privacy: models.PrivacyPublic}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		UserID: amina.ID, Content: "amina private", Privacy: models.PrivacyPrivate}))
	require.NoError(t, repo.Create(ctx, &models.Post{
		UserID: bashir.ID, Content: "newer public", Privacy: models.PrivacyPublic}))

	aminaFeed, err := repo.Feed(ctx, amina.ID)
	require.NoError(t, err)
	require.Len(t, aminaFeed, 3)

	bashirFeed, err := repo.Feed(ctx, bashir.ID)
	require.NoError(t, err)
	require.Len(t, bashirFeed, 2)
	for _, p := range bashirFeed {
		assert.NotEqual(t, "amina private", p.Content)
	}
}

func TestGetByIDComputesDetails(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	amina := mustCreateUser(t, db, "amina")
	bashir := mustCreateUser(t, db, "bashir")

	post := &models.Post{UserID: amina.ID, Content: "counted", Privacy: models.PrivacyPublic}
	require.NoError(t, repo.Create(ctx, post))

	_, err := repo.Like(ctx, post.ID, bashir.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{
		PostID: post.ID, UserID: bashir.ID, Content: "hi"}).Error)

	// Viewed by the liker.
	got, err := repo.GetByID(ctx, post.ID, bashir.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.True(t, got.Liked)

	// Viewed by the author, who has not liked it.
	got, err = repo.GetByID(ctx, post.ID, amina.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)
}
