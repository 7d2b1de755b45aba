package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/therabot/therabot/internal/core/domain"
	"github.com/therabot/therabot/internal/core/repository"
)

const MinPasswordLength = 6

const (
	msgCredentialsRequired = "Username and password are required"
	msgPasswordTooShort    = "Password must be at least 6 characters long"
	msgUsernameTaken       = "Username already exists"
	msgInvalidCredentials  = "Invalid username or password"
)

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	log      logrus.FieldLogger
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		log:      log,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return nil, NewError(KindInvalidInput, msgCredentialsRequired)
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, NewError(KindInvalidInput, msgPasswordTooShort)
	}

	// Check if user already exists
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, NewError(KindAlreadyExists, msgUsernameTaken)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("failed to look up user", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := domain.NewUser(username, digest)
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same name
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewError(KindAlreadyExists, msgUsernameTaken)
		}
		return nil, internalError("failed to create user", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("Created new user")

	return user, nil
}

// Authenticate checks the credentials and returns the matching identity.
// There is no lockout; callers may retry any number of times.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return nil, NewError(KindInvalidInput, msgCredentialsRequired)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.WithField("username", username).Info("Login failed: unknown user")
		return nil, NewError(KindUnauthenticated, msgInvalidCredentials)
	}
	if err != nil {
		return nil, internalError("failed to look up user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.WithField("username", username).Info("Login failed: wrong password")
		return nil, NewError(KindUnauthenticated, msgInvalidCredentials)
	}

	return user.Identity(), nil
}

// ListUsers returns every account ordered by username.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, internalError("failed to list users", err)
	}
	return users, nil
}

// Resolve reloads the account behind a session identity. Accounts that no
// longer exist, or whose name changed, yield an Unauthenticated error.
func (s *AuthService) Resolve(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(KindUnauthenticated, MsgLoginRequired)
	}
	if err != nil {
		return nil, internalError("failed to look up session user", err)
	}

	if user.Username != identity.Username {
		return nil, NewError(KindUnauthenticated, MsgLoginRequired)
	}

	return user.Identity(), nil
}
