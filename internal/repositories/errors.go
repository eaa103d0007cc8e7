package repositories

import "errors"

var (
	// ErrUsernameTaken reports a uniqueness violation on the username.
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
	ErrPostNotFound  = errors.New("post not found")
)
