package models

import (
	"errors"
)

var (
	ErrDuplicateCode     = errors.New("pledge code already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)
