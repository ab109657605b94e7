package services

import "errors"

// Error taxonomy for the duel challenge engine. Handlers map these to HTTP
// status codes; ErrConflict is never surfaced as a failure, it marks a lost
// race against a concurrent writer.
var (
	ErrInvalidStake        = errors.New("stake must be a positive amount of coins")
	ErrMalformedFlag       = errors.New("flag does not match the expected format")
	ErrInsufficientFunds   = errors.New("insufficient coin balance")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrWrongState          = errors.New("operation not allowed in the current challenge state")
	ErrNotEligibleOpponent = errors.New("user is not an eligible opponent for this challenge")
	ErrChallengeExpired    = errors.New("challenge has expired")
	ErrNotParticipant      = errors.New("user is not a participant of this challenge")
	ErrNoTaskAvailable     = errors.New("no duel task matches the challenge filters")
	ErrConflict            = errors.New("challenge was modified by a concurrent operation")
)
