package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zonepilot-backend/internal/domain"
	"zonepilot-backend/pkg/logger"
	"zonepilot-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthUsecase handles admin registration, login and identity resolution.
// The rest of the engine only sees the resolved actor id.
type AuthUsecase struct {
	userRepo    domain.UserRepository
	tokenExpiry time.Duration
}

func NewAuthUsecase(userRepo domain.UserRepository, tokenExpiry time.Duration) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		tokenExpiry: tokenExpiry,
	}
}

// Register creates an admin user.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	if existing, _ := uc.userRepo.GetByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return uc.userRepo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
}

// Login verifies credentials and issues a signed access token.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptSafe(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, uc.tokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Me returns the user behind a resolved actor id.
func (uc *AuthUsecase) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// SeedAdmin provisions the configured bootstrap admin if no user holds
// that email yet. Dev convenience, skipped when unconfigured.
func (uc *AuthUsecase) SeedAdmin(ctx context.Context, email, password string) {
	if email == "" || password == "" {
		return
	}
	if _, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(email)); err == nil {
		return
	}
	if _, err := uc.Register(ctx, email, password); err != nil {
		logger.Warn().Err(err).Str("email", email).Msg("seed admin failed")
		return
	}
	logger.Info().Str("email", email).Msg("seeded bootstrap admin")
}

// bcrypt only reads the first 72 bytes; truncate so longer passphrases
// hash and verify consistently.
func bcryptSafe(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptSafe(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
