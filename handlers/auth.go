package handlers

import (
	"errors"
	"net/http"

	"food-rescue-api/apperr"
	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. Self-registration cannot create admins
// unless the deployment allows it.
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Identity.Register(c.Request.Context(), req, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, "Account created successfully", user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.svc.Identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidCredential) {
		// do not reveal which half was wrong
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, msg string, user *models.User) {
	token, err := middleware.GenerateToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"message": msg,
		"token":   token,
		"user":    newUserView(user),
	})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.svc.Identity.FindByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}
