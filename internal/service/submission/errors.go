package submission

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid submission")
	ErrNotConfigured  = errors.New("remote endpoint not configured")
	ErrRemoteRejected = errors.New("remote endpoint rejected submission")
)
