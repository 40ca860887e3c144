package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pledgebook/events"
	"pledgebook/models"

	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, clock Clock) UserService {
	return &userService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Register creates an account. Usernames are unique ignoring case.
func (s *userService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
		CreatedAt:    s.clock.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uow.EventBus().Publish(events.UserRegisteredEvent{
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("username", user.Username).Info("User registered")
	return user, nil
}

// Authenticate returns the stored account when password matches
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !PasswordMatches(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
