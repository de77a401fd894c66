package seed

import (
	"strings"
	"testing"

	"kulan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{},
		&models.Chat{}, &models.Message{}, &models.Report{}, &models.AdminMessage{},
	))
	return db
}

func TestSeedUsers(t *testing.T) {
	t.Parallel()
	db := setupSeedDB(t)
	s := NewSeeder(db)

	users, err := s.SeedUsers(10)
	require.NoError(t, err)
	require.NotEmpty(t, users)

	// The first account is the admin.
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].IsAdmin)

	// Usernames come out lowercased so login lookups match.
	for _, u := range users {
		assert.Equal(t, strings.ToLower(u.Username), u.Username)
	}
}

func TestSeedPostsAndChats(t *testing.T) {
	t.Parallel()
	db := setupSeedDB(t)
	s := NewSeeder(db)

	users, err := s.SeedUsers(5)
	require.NoError(t, err)
	require.NoError(t, s.SeedPosts(users, 20))
	require.NoError(t, s.SeedChats(users, 10))

	var posts int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(20), posts)

	// Chats stay normalized and unique per pair.
	var chats []models.Chat
	require.NoError(t, db.Find(&chats).Error)
	seen := map[[2]uint]bool{}
	for _, c := range chats {
		assert.Less(t, c.User1ID, c.User2ID)
		key := [2]uint{c.User1ID, c.User2ID}
		assert.False(t, seen[key], "duplicate chat pair %v", key)
		seen[key] = true
	}
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	db := setupSeedDB(t)
	s := NewSeeder(db)

	users, err := s.SeedUsers(3)
	require.NoError(t, err)
	require.NoError(t, s.SeedPosts(users, 5))

	require.NoError(t, s.ClearAll())

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
