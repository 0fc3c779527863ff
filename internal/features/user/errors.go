package user

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidPassword      = errors.New("password must be at least 8 characters")
	ErrPasswordNotSupported = errors.New("password login not supported for this account")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)
