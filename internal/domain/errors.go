package domain

import "errors"

// Error taxonomy shared across services. Handlers map these to HTTP statuses
// in exactly one place; services wrap them with %w and callers match with
// errors.Is.
var (
	// ErrValidation marks malformed or out-of-range caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent entity or a failed cross-reference.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied marks a caller without purchase or role entitlement.
	ErrAccessDenied = errors.New("access denied")
	// ErrSignature marks a gateway payload that fails verification.
	ErrSignature = errors.New("signature verification failed")
)
