package models

import (
	"encoding/json"
	"strings"
	"time"
)

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// SameUsername compares usernames case-insensitively
func SameUsername(a, b string) bool {
	return strings.EqualFold(a, b)
}

type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Created  string `json:"created"`
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userRecord{
		Username: u.Username,
		Password: u.PasswordHash,
		Created:  FormatTimestamp(u.CreatedAt),
	})
}

func (u *User) UnmarshalJSON(data []byte) error {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	// Accounts written without a timestamp are still usable.
	created, _ := ParseTimestamp(rec.Created)
	*u = User{
		Username:     rec.Username,
		PasswordHash: rec.Password,
		CreatedAt:    created,
	}
	return nil
}
