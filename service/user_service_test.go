package service

import (
	"context"
	"testing"

	"pledgebook/events"
	"pledgebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := NewUserService(m.Factory, FixedClock{T: testNow})

	m.ExpectUnitOfWork()
	m.ExpectCommit()
	m.UserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" &&
			u.PasswordHash != "s3cret" &&
			PasswordMatches(u.PasswordHash, "s3cret") &&
			u.CreatedAt.Equal(testNow)
	})).Return(nil)
	m.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.UserRegisteredEvent)
		return ok && ev.Username == "alice"
	})).Return()

	user, err := service.Register(ctx, "  alice ", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	m.AssertAllExpectations(t)
}

func TestUserService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := NewUserService(m.Factory, FixedClock{T: testNow})

	m.ExpectUnitOfWork()
	m.UserRepo.On("Create", ctx, mock.Anything).Return(models.ErrDuplicateUsername)

	user, err := service.Register(ctx, "ALICE", "pw")

	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Nil(t, user)
	m.AssertAllExpectations(t)
	m.UoW.AssertNotCalled(t, "Commit")
}

func TestUserService_Register_Validation(t *testing.T) {
	m := NewTestMocks()
	service := NewUserService(m.Factory, FixedClock{T: testNow})

	_, err := service.Register(context.Background(), "   ", "pw")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = service.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	m.Factory.AssertNotCalled(t, "Create")
}

func TestUserService_Authenticate(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	require.NoError(t, err)
	stored := &models.User{Username: "Alice", PasswordHash: hashed}

	t.Run("correct password", func(t *testing.T) {
		ctx := context.Background()
		m := NewTestMocks()
		service := NewUserService(m.Factory, FixedClock{T: testNow})

		m.ExpectUnitOfWork()
		m.UserRepo.On("GetByUsername", ctx, "alice").Return(stored, nil)

		user, err := service.Authenticate(ctx, "alice", "s3cret")

		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Username)
		m.AssertAllExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctx := context.Background()
		m := NewTestMocks()
		service := NewUserService(m.Factory, FixedClock{T: testNow})

		m.ExpectUnitOfWork()
		m.UserRepo.On("GetByUsername", ctx, "alice").Return(stored, nil)

		_, err := service.Authenticate(ctx, "alice", "guess")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctx := context.Background()
		m := NewTestMocks()
		service := NewUserService(m.Factory, FixedClock{T: testNow})

		m.ExpectUnitOfWork()
		m.UserRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil)

		_, err := service.Authenticate(ctx, "ghost", "pw")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
