package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrLastAdmin indicates that the operation would leave the system without admins
	ErrLastAdmin = errors.New("cannot remove the last admin")

	// ErrSessionNotFound indicates that session was not found or has expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenNotFound indicates that setup token was not found or has expired
	ErrTokenNotFound = errors.New("setup token not found")

	// ErrUpdateNotFound indicates that update post was not found
	ErrUpdateNotFound = errors.New("update not found")
)
