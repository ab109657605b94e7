package duels

import (
	"net/http"

	"api/middleware"
	"api/realtime"

	"github.com/gin-gonic/gin"
)

// SubmitFlag submits a flag against an active duel
// @Summary Submit a flag
// @Description Submit a flag for an active duel. The first correct submission wins the duel and receives both stakes; a correct flag arriving after the duel is decided gets already_decided instead of a second payout.
// @Tags Duels
// @Accept json
// @Produce json
// @Param id path string true "Challenge ID"
// @Param request body SubmitFlagRequest true "Flag submission"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /duels/{id}/submit [post]
// @Security Bearer
func SubmitFlag(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	var request SubmitFlagRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondWithError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	challengeID := c.Param("id")
	result, err := duelService.SubmitFlag(c.Request.Context(), challengeID, user.ID, request.Flag)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	if result.IsWinner && !result.AlreadyDecided {
		realtime.BroadcastDuelUpdate(realtime.DuelUpdate{
			ChallengeID: challengeID,
			Status:      "completed",
			WinnerID:    &user.ID,
		})
	}

	c.JSON(http.StatusOK, result)
}
