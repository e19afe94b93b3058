package entity

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidCategory = errors.New("invalid conversation category")

	// File errors
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyDocument       = errors.New("document contains no extractable text")

	// Access errors
	ErrForbidden = errors.New("resource belongs to another user")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
