package handlers

import (
	"net/http"

	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
)

type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// AdminCreateUser creates an account of any role, including ADMIN. Admin only.
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	grantor, err := h.svc.Identity.FindByID(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.svc.Identity.Register(ctx, req, grantor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": newUserView(user)})
}

// AdminListUsers returns all users, optionally only one ?role= and only
// enabled ones with ?active=true. Admin only.
func (h *Handler) AdminListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	roles := models.Roles
	if r := c.Query("role"); r != "" {
		role, err := models.ParseRole(r)
		if err != nil {
			respondError(c, err)
			return
		}
		roles = []models.Role{role}
	}

	var users []models.User
	for _, role := range roles {
		var (
			batch []models.User
			err   error
		)
		if c.Query("active") == "true" {
			batch, err = h.svc.Identity.ListActiveByRole(ctx, role)
		} else {
			batch, err = h.svc.Identity.ListByRole(ctx, role)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		users = append(users, batch...)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": newUserViews(users)})
}

// AdminSetUserEnabled enables or disables an account. A disabled account can
// neither sign in nor keep using tokens it already holds. Admin only.
func (h *Handler) AdminSetUserEnabled(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req SetEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if id == middleware.GetUserID(c) && !*req.Enabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot disable your own account"})
		return
	}
	user, err := h.svc.Identity.SetEnabled(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": newUserView(user)})
}

// AdminDeleteUser hard-deletes an account (emergency use). Admin only.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if id == middleware.GetUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.svc.Identity.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
