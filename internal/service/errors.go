package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrForbidden          = errors.New("insufficient role")
	ErrBlobMissing        = errors.New("file has not been uploaded")
)

// ErrFileTooLarge is reported when an uploaded object turns out to exceed
// the ceiling that could not be signed into its upload URL.
var ErrFileTooLarge = &InputError{Message: "file exceeds the maximum upload size"}

// InputError is a validation failure whose message is safe to show the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(message string) error {
	return &InputError{Message: message}
}
