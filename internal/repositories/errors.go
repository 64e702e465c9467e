package repositories

import "errors"

var (
	ErrRecordNotFound    = errors.New("verification record not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrStaleUpdate       = errors.New("verification record changed since it was read")
	ErrDatabaseOperation = errors.New("database operation failed")
)
