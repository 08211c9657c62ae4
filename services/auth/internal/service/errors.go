package service

import (
	"errors"

	"github.com/planbookai/platform/services/auth/internal/repo"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrDuplicateIdentity  = repo.ErrDuplicateIdentity
	ErrUserNotFound       = repo.ErrUserNotFound
)
