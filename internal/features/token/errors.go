package token

import "errors"

var (
	ErrTokenNotFound = errors.New("learning token not found")
	ErrNotTokenOwner = errors.New("token belongs to another user")
)
