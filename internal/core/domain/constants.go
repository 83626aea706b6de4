package domain

import "errors"

var (
	ErrUnauthorized           = errors.New("identity not authorized")
	ErrAdminOnly              = errors.New("command restricted to admin")
	ErrInvalidIdentity        = errors.New("invalid id")
	ErrStoreCorrupt           = errors.New("identity store corrupt")
	ErrDuplicateCommand       = errors.New("duplicate command")
	ErrCommandNotFound        = errors.New("command not found")
	ErrRegistryNotInitialized = errors.New("can't fetch command, registry not initialized")
	ErrSendingFailed          = errors.New("failed to send notification")
)
