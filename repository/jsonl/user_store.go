package jsonl

import (
	"context"
	"errors"
	"fmt"

	"pledgebook/models"
)

// UserStore keeps accounts in a JSON-lines file. Usernames are unique
// ignoring case.
type UserStore struct {
	log *LogFile[models.User]
}

// NewUserStore opens the account file at path
func NewUserStore(path string) (*UserStore, error) {
	lf, err := OpenLogFile[models.User](path, "users")
	if err != nil {
		return nil, err
	}
	return &UserStore{log: lf}, nil
}

// GetByUsername looks up an account case-insensitively. It returns nil if
// there is no such account.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, _, err := s.log.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	for i := range users {
		if models.SameUsername(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Create stores a new account or returns models.ErrDuplicateUsername
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	err := s.log.AppendUnique(*user, func(existing models.User) bool {
		return models.SameUsername(existing.Username, user.Username)
	})
	if errors.Is(err, ErrConflict) {
		return models.ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}
