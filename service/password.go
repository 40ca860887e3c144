package service

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// HashPassword hashes a new password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// PasswordMatches checks password against a stored hash. Besides bcrypt it
// understands the "method$salt$hex" pbkdf2 and scrypt hashes found in
// account files created before bcrypt was adopted.
func PasswordMatches(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	expected, err := hex.DecodeString(want)
	if err != nil || len(expected) == 0 {
		return false
	}

	got := derivePasswordKey(method, []byte(salt), []byte(password), len(expected))
	return got != nil && subtle.ConstantTimeCompare(got, expected) == 1
}

func derivePasswordKey(method string, salt, password []byte, keyLen int) []byte {
	fields := strings.Split(method, ":")

	switch fields[0] {
	case "pbkdf2":
		digest := "sha256"
		iterations := 600000
		if len(fields) > 1 {
			digest = fields[1]
		}
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil
			}
			iterations = n
		}
		var h func() hash.Hash
		switch digest {
		case "sha1":
			h = sha1.New
		case "sha256":
			h = sha256.New
		case "sha512":
			h = sha512.New
		default:
			return nil
		}
		return pbkdf2.Key(password, salt, iterations, keyLen, h)

	case "scrypt":
		n, r, p := 32768, 8, 1
		if len(fields) == 4 {
			var err error
			if n, err = strconv.Atoi(fields[1]); err != nil {
				return nil
			}
			if r, err = strconv.Atoi(fields[2]); err != nil {
				return nil
			}
			if p, err = strconv.Atoi(fields[3]); err != nil {
				return nil
			}
		}
		key, err := scrypt.Key(password, salt, n, r, p, keyLen)
		if err != nil {
			return nil
		}
		return key
	}

	return nil
}
