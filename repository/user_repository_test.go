package repository

import (
	"context"
	"testing"

	"pledgebook/models"
	"pledgebook/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("Alice")))

	t.Run("lookup ignores case", func(t *testing.T) {
		user, err := repo.GetByUsername(ctx, "aLiCe")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Alice", user.Username)
	})

	t.Run("duplicate ignoring case", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestUser("ALICE"))
		assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	})

	t.Run("missing user", func(t *testing.T) {
		user, err := repo.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}
