package testutil

import (
	"context"
	"testing"
	"time"

	"pledgebook/database"
	"pledgebook/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// FixtureTime is the creation time used by the factories
var FixtureTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// CreateTestPledge creates a pending pledge with default values
func CreateTestPledge(code, username string, kind models.PledgeKind) *models.Pledge {
	return &models.Pledge{
		Code:            code,
		Username:        username,
		Kind:            kind,
		AmountPi:        10,
		AmountPHPAtTime: 400,
		CreatedAt:       FixtureTime,
		Status:          models.PledgeStatusPending,
	}
}

// CreateTestPledgeWithAmount creates a pending pledge for amountPi
func CreateTestPledgeWithAmount(code, username string, kind models.PledgeKind, amountPi float64) *models.Pledge {
	p := CreateTestPledge(code, username, kind)
	p.AmountPi = amountPi
	p.AmountPHPAtTime = amountPi * 40
	return p
}

// CreateTestUser creates an account with a placeholder hash
func CreateTestUser(username string) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuJ6T1aP5hN5m2WvZ0E0m8e6dT2bCq6xG",
		CreatedAt:    FixtureTime,
	}
}

// SeedPledges inserts pledges directly in one transaction
func SeedPledges(t *testing.T, db *database.DB, pledges ...*models.Pledge) {
	t.Helper()

	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		for _, p := range pledges {
			_, err := tx.Exec(context.Background(), `
				INSERT INTO pledges (code, username, kind, amount_pi, amount_php_at_time, created_at, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, p.Code, p.Username, p.Kind, p.AmountPi, p.AmountPHPAtTime, p.CreatedAt, p.Status)
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}
