package admin

import "errors"

var (
	ErrInvalidPassphrase = errors.New("incorrect passphrase")
	ErrLocked            = errors.New("viewer is locked")
	ErrAdminDisabled     = errors.New("admin access is not configured")
	ErrSessionNotFound   = errors.New("session not found or expired")
)
