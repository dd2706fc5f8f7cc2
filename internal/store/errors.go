package store

import "errors"

var (
	ErrDuplicate     = errors.New("record with this id already exists")
	ErrNotFound      = errors.New("record not found")
	ErrQuotaExceeded = errors.New("store quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
	ErrUnknownStore  = errors.New("unknown store")
)
