package auth

import (
	"net/http"
	"time"

	"api/config"
	"api/database"
	"api/models"
	"api/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var startingCoins = 500

func generateToken(userID string, rememberMe bool) (string, error) {
	lifetime := 24 * time.Hour
	if rememberMe {
		lifetime = 30 * 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// Login authenticates a user and returns a JWT
// @Summary Login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func Login(c *gin.Context) {
	var request LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "email = ?", request.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials})
		return
	}

	if !utils.CheckPassword(user.Password, request.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials})
		return
	}

	if user.Blocked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAccountBlocked})
		return
	}

	token, err := generateToken(user.ID, request.RememberMe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrTokenGenerateFailed})
		return
	}

	now := time.Now()
	user.LastConnected = &now
	database.DB.Save(&user)

	setCookieToken(c, token, request.RememberMe)
	c.JSON(http.StatusOK, AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Coins:    user.Coins,
		IsAdmin:  user.IsAdmin,
	})
}

// RegisterUser creates a new user account with the starting coin balance
// @Summary Register
// @Description Create a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func RegisterUser(c *gin.Context) {
	var request RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", request.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrEmailInUse})
		return
	}

	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrHashPasswordFailed})
		return
	}

	user := models.User{
		Email:    request.Email,
		Username: request.Username,
		Password: hashed,
		Coins:    startingCoins,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrUserCreateFailed})
		return
	}

	token, err := generateToken(user.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrTokenGenerateFailed})
		return
	}

	setCookieToken(c, token, false)
	c.JSON(http.StatusCreated, AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Coins:    user.Coins,
	})
}
