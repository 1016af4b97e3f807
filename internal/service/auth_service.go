package service

import (
	"context"
	"errors"
	"strings"

	"mangaden/internal/auth"
	"mangaden/internal/models"
	"mangaden/internal/repository"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrEmailInUse         = errors.New("email already in use")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password is too short")
	ErrMissingField       = errors.New("required field is missing")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLength = 8

// bcrypt hash of an unused password, compared against when the username
// is unknown so login timing does not reveal which accounts exist.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

type AuthService interface {
	Register(ctx context.Context, username, email, password1, password2 string) (*models.User, error)
	// Login verifies credentials and returns a signed session token for
	// the cookie alongside the account.
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, username, email, password1, password2 string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password1 == "" {
		return nil, ErrMissingField
	}
	if password1 != password2 {
		return nil, ErrPasswordMismatch
	}
	if len(password1) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password1)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}

	// The repository also creates the user's profile row.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		// Dummy compare keeps unknown-user latency close to the real path.
		auth.VerifyPassword(dummyHash, password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, err
	}

	// The timestamp is best effort; login still succeeds without it.
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	return token, user, nil
}
