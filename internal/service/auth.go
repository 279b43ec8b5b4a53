package service

import (
	"errors"

	"github.com/NekruzRakhimov/todo-list/internal/model"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/jwt"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/password"
	"github.com/NekruzRakhimov/todo-list/internal/repository"
)

var (
	ErrUsernameExists     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService registers users, signs them in and resolves bearer
// tokens to an authenticated Identity.
type AuthService struct {
	users  *repository.UserRepository
	tokens *jwt.TokenService
}

// NewAuthService creates an AuthService
func NewAuthService(users *repository.UserRepository, tokens *jwt.TokenService) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a new user with a hashed password. The existence
// pre-check mirrors the sign-up flow; the username unique constraint
// catches the race between concurrent registrations.
func (s *AuthService) Register(fullName, username, plainPassword string) error {
	existing, err := s.users.FindByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUsernameExists
	}

	passwordHash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}

	if _, err := s.users.Create(fullName, username, passwordHash); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return ErrUsernameExists
		}
		return err
	}

	return nil
}

// Login verifies credentials and returns a signed access token
func (s *AuthService) Login(username, plainPassword string) (string, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return "", err
	}
	if user == nil || !password.Verify(plainPassword, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// Authenticate resolves a bearer token to an Identity. Token errors
// (expired, invalid, missing subject) pass through; a subject that no
// longer resolves to a stored user fails with ErrUserNotFound.
func (s *AuthService) Authenticate(token string) (model.Identity, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return model.Identity{}, err
	}

	user, err := s.users.FindByUsername(subject)
	if err != nil {
		return model.Identity{}, err
	}
	if user == nil {
		return model.Identity{}, ErrUserNotFound
	}

	return model.Identity{
		ID:       user.ID,
		Username: user.Username,
	}, nil
}
