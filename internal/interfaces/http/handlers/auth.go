// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/domain/user"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register handles user registration. The account is not signed in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.userService.Register(c.Request.Context(), &req); err != nil {
		status := http.StatusBadRequest
		if c.Request.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully. Please sign in.",
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	response, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusRequestTimeout, gin.H{
			"error": "Login interrupted",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    response,
	})
}

// LoginAsGuest handles guest sign-in
func (h *AuthHandler) LoginAsGuest(c *gin.Context) {
	response, err := h.userService.LoginAsGuest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to sign in as guest",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in as guest",
		"data":    response,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	h.userService.Logout(claims)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    h.userService.GetProfile(claims),
	})
}

func (h *AuthHandler) claims(c *gin.Context) (*auth.Claims, bool) {
	claims, exists := middleware.GetClaimsFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return nil, false
	}
	return claims, true
}
