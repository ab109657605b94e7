package users

import (
	"net/http"

	"api/middleware"

	"github.com/gin-gonic/gin"
)

// GetUserProfile retrieves the authenticated user's profile
// @Summary Get User Profile
// @Description Get the profile information of the authenticated user, including the coin balance available for duel stakes
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Router /user/profile [get]
// @Security Bearer
func GetUserProfile(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return // Error already handled by middleware
	}

	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers all routes related to users
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup) {
	user := r.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/profile", GetUserProfile)
	}
}
