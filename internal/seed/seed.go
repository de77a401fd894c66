// Package seed provides helpers to create demo data for the application
// database. Development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"kulan/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Seeder populates the database with fake users, posts and conversations.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Table order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Report{}, &models.AdminMessage{}, &models.Message{}, &models.Chat{},
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n users plus one admin account ("admin").
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n+1)

	admin := &models.User{
		Username: "admin",
		Password: string(hashed),
		Name:     "Administrator",
		IsAdmin:  true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < n; i++ {
		user := &models.User{
			Username:     strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 99)),
			Password:     string(hashed),
			Name:         gofakeit.Name(),
			Bio:          gofakeit.Sentence(10),
			ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := s.db.Create(user).Error; err != nil {
			// Generated usernames can collide; skip and keep going.
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates n posts spread across the users, roughly one in five
// private, with likes and comments from random users.
func (s *Seeder) SeedPosts(users []*models.User, n int) error {
	if len(users) == 0 {
		return nil
	}

	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		privacy := models.PrivacyPublic
		if s.rng.Intn(5) == 0 {
			privacy = models.PrivacyPrivate
		}

		post := &models.Post{
			UserID:    author.ID,
			Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
			Privacy:   privacy,
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		}
		if s.rng.Intn(3) == 0 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		}
		if err := s.db.Create(post).Error; err != nil {
			return err
		}

		for _, liker := range s.pickUsers(users, s.rng.Intn(6)) {
			like := &models.Like{PostID: post.ID, UserID: liker.ID}
			_ = s.db.Create(like).Error
		}
		for _, commenter := range s.pickUsers(users, s.rng.Intn(4)) {
			comment := &models.Comment{
				PostID:  post.ID,
				UserID:  commenter.ID,
				Content: gofakeit.Sentence(12),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedChats creates n chats between random user pairs with a short
// back-and-forth in each.
func (s *Seeder) SeedChats(users []*models.User, n int) error {
	if len(users) < 2 {
		return nil
	}

	for i := 0; i < n; i++ {
		a := users[s.rng.Intn(len(users))]
		b := users[s.rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		u1, u2 := a.ID, b.ID
		if u2 < u1 {
			u1, u2 = u2, u1
		}

		chat := &models.Chat{User1ID: u1, User2ID: u2}
		if err := s.db.Create(chat).Error; err != nil {
			// Pair already exists; reuse it.
			if err := s.db.Where("user1_id = ? AND user2_id = ?", u1, u2).First(chat).Error; err != nil {
				continue
			}
		}

		senders := []uint{a.ID, b.ID}
		for j := 0; j < 2+s.rng.Intn(8); j++ {
			message := &models.Message{
				ChatID:      chat.ID,
				SenderID:    senders[j%2],
				Content:     gofakeit.Sentence(8),
				MessageType: models.MessageTypeText,
			}
			if err := s.db.Create(message).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) pickUsers(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	picked := make([]*models.User, 0, n)
	seen := make(map[uint]bool, n)
	for len(picked) < n {
		u := users[s.rng.Intn(len(users))]
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		picked = append(picked, u)
	}
	return picked
}
