package duels

import (
	"errors"
	"net/http"
	"time"

	"api/models"
	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Constants for error messages
const (
	ErrChallengeNotFound   = "Challenge not found"
	ErrInvalidStake        = "Stake must be a positive amount of coins"
	ErrMalformedFlag       = "Flag does not match the expected format"
	ErrInsufficientFunds   = "Insufficient coin balance"
	ErrWrongState          = "Operation not allowed in the current challenge state"
	ErrNotEligibleOpponent = "You are not an eligible opponent for this challenge"
	ErrChallengeExpired    = "Challenge has expired"
	ErrNotParticipant      = "You are not a participant of this challenge"
	ErrNoPermissionExport  = "User does not have permission to export duel history"
	ErrFailedFetchDuels    = "Failed to fetch challenges"
	ErrFailedExport        = "Failed to export duel history"
	ErrInvalidRequest      = "Invalid request data"
)

// CreateChallengeRequest model for opening a duel
type CreateChallengeRequest struct {
	Stake      int     `json:"stake" binding:"required"`
	OpponentID *string `json:"opponent_id"`
	CategoryID *string `json:"category_id"`
	Difficulty *string `json:"difficulty"`
}

// SubmitFlagRequest model for submitting a flag to an active duel
type SubmitFlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// AcceptResponse model returned after accepting a duel
type AcceptResponse struct {
	Status    models.ChallengeStatus `json:"status"`
	StartedAt *time.Time             `json:"started_at"`
}

// ListChallengesResponse groups the caller's duels with open ones
type ListChallengesResponse struct {
	Own  []models.Challenge `json:"own"`
	Open []models.Challenge `json:"open"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, status int, message string) {
	response.Error(c, status, message)
}

// respondWithServiceError maps engine errors to HTTP responses
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChallengeNotFound):
		respondWithError(c, http.StatusNotFound, ErrChallengeNotFound)
	case errors.Is(err, services.ErrInvalidStake):
		respondWithError(c, http.StatusBadRequest, ErrInvalidStake)
	case errors.Is(err, services.ErrMalformedFlag):
		respondWithError(c, http.StatusBadRequest, ErrMalformedFlag)
	case errors.Is(err, services.ErrInsufficientFunds):
		respondWithError(c, http.StatusPaymentRequired, ErrInsufficientFunds)
	case errors.Is(err, services.ErrNotEligibleOpponent):
		respondWithError(c, http.StatusConflict, ErrNotEligibleOpponent)
	case errors.Is(err, services.ErrChallengeExpired):
		respondWithError(c, http.StatusConflict, ErrChallengeExpired)
	case errors.Is(err, services.ErrWrongState):
		respondWithError(c, http.StatusConflict, ErrWrongState)
	case errors.Is(err, services.ErrNotParticipant):
		respondWithError(c, http.StatusForbidden, ErrNotParticipant)
	default:
		respondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
