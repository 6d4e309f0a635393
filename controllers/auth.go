package controllers

import (
	"net/http"
	"strings"

	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController signs in the lounge's staff account, configured through
// STAFF_USERNAME and STAFF_PASSWORD_HASH.
type AuthController struct {
	Username     string
	PasswordHash string
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	if ac.Username == "" || ac.PasswordHash == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Staff login is not configured")
		return
	}

	username := strings.TrimSpace(input.Username)
	if username != ac.Username || !utils.CheckPasswordHash(input.Password, ac.PasswordHash) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(username)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	maxAge := utils.TokenExpiryHours() * 3600
	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"staff": gin.H{
			"username": username,
			"role":     "staff",
		},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	staff, exists := c.Get("staff")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Staff not found in context")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": staff,
		"role":     "staff",
	})
}
