package duels

import (
	"net/http"

	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

// ExportDuelHistory exports resolved duels as an Excel workbook
// @Summary Export duel history
// @Description Export all completed and cancelled duels to an xlsx file. Admin only.
// @Tags Duels
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /duels/export [get]
// @Security Bearer
func ExportDuelHistory(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	if !user.IsAdmin {
		respondWithError(c, http.StatusUnauthorized, ErrNoPermissionExport)
		return
	}

	file, err := services.ExportDuelHistoryExcel(c.Request.Context(), duelStore)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedExport)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="duel-history.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedExport)
	}
}
