package service

import (
	"context"
	"strings"

	"kulan/internal/models"
	"kulan/internal/repository"
	"kulan/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides registration, authentication and profile business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput is the input for creating an account.
type RegisterInput struct {
	Username     string
	Password     string
	Name         string
	Bio          string
	ProfileImage string
}

// UpdateProfileInput is the input for a profile update. Empty fields keep
// their current value, except Bio which is always rewritten.
type UpdateProfileInput struct {
	UserID       uint
	Username     string
	Name         string
	Bio          string
	ProfileImage string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register validates the input, hashes the password and stores the user.
// Usernames are lowercased so uniqueness is case-insensitive.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     username,
		Password:     string(hashed),
		Name:         strings.TrimSpace(in.Name),
		Bio:          in.Bio,
		ProfileImage: in.ProfileImage,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the user. Blocked users
// are rejected even with a correct password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsBlocked {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// UpdateProfile rewrites username, name, bio and optionally the profile image.
// A duplicate username surfaces the same structured outcome as registration.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		username := strings.ToLower(strings.TrimSpace(in.Username))
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			existing, err := s.userRepo.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewDuplicateUsernameError()
			}
		}
		user.Username = username
	}
	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = strings.TrimSpace(in.Name)
	}
	user.Bio = in.Bio
	if in.ProfileImage != "" {
		user.ProfileImage = in.ProfileImage
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword re-verifies the current password before accepting a new one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}
