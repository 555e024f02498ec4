package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Account errors
	ErrMsgAccountNotFound = "account not found"

	// XP errors
	ErrMsgNegativeXP = "xp must be non-negative"

	// Loot box errors
	ErrMsgBoxNotFound   = "loot box not found"
	ErrMsgUnknownTier   = "unknown loot box tier"
	ErrMsgInvalidStatus = "invalid loot box status"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"
	ErrMsgMissingUser  = "missing user id"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrAccountNotFound = errors.New(ErrMsgAccountNotFound)
	ErrNegativeXP      = errors.New(ErrMsgNegativeXP)
	ErrBoxNotFound     = errors.New(ErrMsgBoxNotFound)
	ErrUnknownTier     = errors.New(ErrMsgUnknownTier)
	ErrInvalidStatus   = errors.New(ErrMsgInvalidStatus)
	ErrInvalidInput    = errors.New(ErrMsgInvalidInput)
	ErrMissingUser     = errors.New(ErrMsgMissingUser)
)
