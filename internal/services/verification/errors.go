package verification

import "errors"

// Service errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSignature = errors.New("invalid callback signature")
	ErrNotFound         = errors.New("verification not found")
	ErrConflict         = errors.New("verification was updated concurrently")
	ErrVendor           = errors.New("verification vendor error")
	ErrPersistence      = errors.New("verification storage error")
	ErrConfiguration    = errors.New("verification service misconfigured")
)
