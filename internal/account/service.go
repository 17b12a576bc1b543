// Package account registers users and verifies their credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/storage"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrInvalidCredentials is returned for an unknown user and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidInput is returned when a username or password is blank.
	ErrInvalidInput = errors.New("username and password are required")
)

// Service implements registration and authentication over a UserStore.
type Service struct {
	users storage.UserStore
	cost  int

	// dummyHash is compared against when the user does not exist so both
	// failure paths do the same amount of work.
	dummyHash []byte
}

// Option customizes the Service.
type Option func(*Service)

// WithBcryptCost overrides the hashing cost (defaults to bcrypt.DefaultCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService creates an account service.
func NewService(users storage.UserStore, opts ...Option) *Service {
	s := &Service{
		users: users,
		cost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("finance-journal-dummy"), s.cost)
	return s
}

// Register creates a new user and returns its ID.
func (s *Service) Register(ctx context.Context, username, password string, profile domain.Profile) (int64, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return 0, ErrInvalidInput
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return 0, ErrUsernameTaken
	case !errors.Is(err, storage.ErrNotFound):
		return 0, fmt.Errorf("Register: lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("Register: hash password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, &domain.User{
		Username:       username,
		HashedPassword: string(hashed),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Image:          profile.Image,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return 0, ErrUsernameTaken
	}
	if err != nil {
		return 0, fmt.Errorf("Register: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int64("user_id", id).
		Str("username", username).
		Msg("User registered")
	return id, nil
}

// Authenticate verifies the password and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("Authenticate: lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
