package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, credential verification and profile
// reads/edits.
type UserService struct {
	userRepo repository.UserRepository
	engRepo  repository.EngagementRepository
}

// SignupInput is the payload for account registration.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateProfileInput carries a partial profile edit. Nil fields are left
// unchanged; there is deliberately no way to reach email or credential
// through this path.
type UpdateProfileInput struct {
	UserID    uint
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, engRepo repository.EngagementRepository) *UserService {
	return &UserService{userRepo: userRepo, engRepo: engRepo}
}

// Signup registers a new account. Email is the case-normalized natural key;
// a duplicate registration fails with CONFLICT.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Password:  string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the account. A missing account and
// a wrong password produce the same opaque failure.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetUser loads a full identity record, engagement state included. Only ever
// returned to its owner.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile loads another user's public profile view.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}

// ListProfiles returns every user's public profile view.
func (s *UserService) ListProfiles(ctx context.Context) ([]models.PublicProfile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return profiles, nil
}

// UpdateProfile applies a partial edit to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.FirstName != nil {
		if err := validation.ValidateName("first_name", *in.FirstName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	// Last name is optional at signup, so an edit may keep or clear it.
	if in.LastName != nil && *in.LastName != "" {
		if err := validation.ValidateName("last_name", *in.LastName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	var updated *models.User
	err := s.engRepo.UpdateUser(ctx, in.UserID, func(u *models.User) error {
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Bio != nil {
			u.Bio = *in.Bio
		}
		if in.Avatar != nil {
			u.Avatar = *in.Avatar
		}
		copied := *u
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
