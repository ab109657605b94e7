package duels

import (
	"net/http"
	"time"

	"api/database"
	"api/middleware"
	"api/models"
	"api/realtime"

	"github.com/gin-gonic/gin"
)

const openDuelsCacheKey = "duels:open"
const openDuelsCacheTTL = 5 * time.Second

// CreateChallenge opens a new duel challenge
// @Summary Create a duel challenge
// @Description Open a duel, staking coins on who solves a cryptography task first. Leave opponent_id empty to open the duel to anyone.
// @Tags Duels
// @Accept json
// @Produce json
// @Param request body CreateChallengeRequest true "Challenge details"
// @Success 201 {object} models.Challenge
// @Failure 400 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Router /duels [post]
// @Security Bearer
func CreateChallenge(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	var request CreateChallengeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondWithError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	challenge, err := duelService.CreateChallenge(c.Request.Context(), user.ID, request.Stake, request.OpponentID, request.CategoryID, request.Difficulty)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	database.CacheInvalidate(c.Request.Context(), openDuelsCacheKey)
	c.JSON(http.StatusCreated, challenge)
}

// AcceptChallenge joins a pending duel as the opponent
// @Summary Accept a duel challenge
// @Description Accept a pending duel, staking the same amount as the challenger. The task activates after a fixed delay.
// @Tags Duels
// @Produce json
// @Param id path string true "Challenge ID"
// @Success 200 {object} AcceptResponse
// @Failure 402 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /duels/{id}/accept [post]
// @Security Bearer
func AcceptChallenge(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	challenge, err := duelService.AcceptChallenge(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	database.CacheInvalidate(c.Request.Context(), openDuelsCacheKey)
	realtime.BroadcastDuelUpdate(realtime.DuelUpdate{
		ChallengeID: challenge.ID,
		Status:      string(challenge.Status),
	})

	c.JSON(http.StatusOK, AcceptResponse{Status: challenge.Status, StartedAt: challenge.StartedAt})
}

// CancelChallenge withdraws a duel before it becomes active
// @Summary Cancel a duel challenge
// @Description Cancel a pending duel as the challenger, or an accepted duel as either participant before activation. Stakes are refunded in full.
// @Tags Duels
// @Produce json
// @Param id path string true "Challenge ID"
// @Success 200 {object} models.Challenge
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /duels/{id}/cancel [post]
// @Security Bearer
func CancelChallenge(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	challenge, err := duelService.CancelChallenge(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	database.CacheInvalidate(c.Request.Context(), openDuelsCacheKey)
	realtime.BroadcastDuelUpdate(realtime.DuelUpdate{
		ChallengeID: challenge.ID,
		Status:      string(challenge.Status),
	})

	c.JSON(http.StatusOK, challenge)
}

// GetChallenge retrieves a duel challenge with its participants
// @Summary Get a duel challenge
// @Description Get a challenge and its participants. The task body is included only once the duel is active or completed, and only for participants.
// @Tags Duels
// @Produce json
// @Param id path string true "Challenge ID"
// @Success 200 {object} models.Challenge
// @Failure 404 {object} map[string]string
// @Router /duels/{id} [get]
// @Security Bearer
func GetChallenge(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	challenge, err := duelService.GetChallenge(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// ListChallenges lists the caller's duels plus the open duels they could accept
// @Summary List duel challenges
// @Description Get the caller's own challenges and the open challenges available to accept
// @Tags Duels
// @Produce json
// @Success 200 {object} ListChallengesResponse
// @Failure 500 {object} map[string]string
// @Router /duels [get]
// @Security Bearer
func ListChallenges(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	ctx := c.Request.Context()

	own, err := duelStore.ListForUser(ctx, user.ID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedFetchDuels)
		return
	}

	// The open listing is the same for every caller, so it is cached briefly
	// and the caller's own entries are filtered out afterwards
	var open []models.Challenge
	if !database.CacheGetJSON(ctx, openDuelsCacheKey, &open) {
		open, err = duelStore.ListOpen(ctx, "")
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, ErrFailedFetchDuels)
			return
		}
		database.CacheSetJSON(ctx, openDuelsCacheKey, open, openDuelsCacheTTL)
	}

	available := make([]models.Challenge, 0, len(open))
	for _, challenge := range open {
		if challenge.ChallengerID != user.ID {
			available = append(available, challenge)
		}
	}

	c.JSON(http.StatusOK, ListChallengesResponse{Own: own, Open: available})
}
