package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Admin registry
	ErrInvalidSecret     = errors.New("invalid registration secret")
	ErrAlreadyRegistered = errors.New("already registered as admin")

	// Classifier
	ErrInvalidVerdict = errors.New("classifier verdict does not match schema")
	ErrEmptyResponse  = errors.New("classifier returned no content")

	// Dashboard auth
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many failed attempts")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUnauthorized       = errors.New("unauthorized")

	// Persistence
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrSchemaMissing      = errors.New("required table is missing")
)
