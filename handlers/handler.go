// Package handlers holds the gin handlers for the REST API. Handlers parse
// and authorize the request, call into services, and render response views.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc       *services.Services
	jwtSecret []byte
	tokenTTL  time.Duration
}

func New(svc *services.Services, jwtSecret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Accounts is what middleware.ActiveAccount checks tokens against.
func (h *Handler) Accounts() middleware.Accounts {
	return h.svc.Identity
}

// idParam parses a numeric path parameter, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"error": msg})
}

// isStaff reports whether role may act on records it does not own.
func isStaff(role models.Role) bool {
	return role == models.RoleAdmin
}
