package service

import "errors"

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials covers both unknown username and wrong
	// password, so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken marks a refresh token that is missing,
	// expired, tampered with, or superseded by a newer login.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrConflict marks a duplicate username on signup.
	ErrConflict = errors.New("username already taken")
)
