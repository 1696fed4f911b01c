package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidCredentials    = errors.New("Invalid email or password")
	ErrEmailTaken            = errors.New("Email already registered")
	ErrInvalidEmail          = errors.New("Invalid email format")
	ErrWeakPassword          = errors.New("Password must be at least 8 characters with a letter, a number and a special character")
	ErrInvalidFullname       = errors.New("Fullname may only contain letters, spaces, hyphens and apostrophes")
	ErrUserNotFound          = errors.New("User not found")
	ErrIncorrectPassword     = errors.New("Incorrect current password")
)
