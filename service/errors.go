package service

import (
	"errors"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid pledge type")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPledgeNotFound     = errors.New("not found or already processed")
	ErrCodeExhausted      = errors.New("could not allocate a unique pledge code")
)
