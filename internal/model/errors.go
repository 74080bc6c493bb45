package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")

	// Purchase errors (rejected purchases never mutate state)
	ErrUnknownPowerUp    = errors.New("unknown power-up")
	ErrAlreadyOwned      = errors.New("power-up already owned")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Persistence errors
	ErrMalformedState    = errors.New("malformed player state")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrResetInProgress   = errors.New("reset in progress")
	ErrSnapshotNotFound  = errors.New("local snapshot not found")
)
