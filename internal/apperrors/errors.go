package apperrors

import (
	"errors"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrUsernameRequired = errors.New("username is required")
	ErrNotSignedIn      = errors.New("user is not signed in")

	ErrQRCodeNotFound      = errors.New("qr code not found")
	ErrQRCodeAlreadyExists = errors.New("qr code already exists")

	ErrNotConfirmed = errors.New("action is not confirmed")
)
