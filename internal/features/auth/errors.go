package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrWeakPassword         = errors.New("password must be at least 8 characters long")
	ErrWrongProvider        = errors.New("account uses a different sign-in method")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrGoogleExchangeFailed = errors.New("google sign-in failed")
)
