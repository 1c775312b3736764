package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ImpactStats estimates meals provided and CO2 avoided from delivered food.
func (h *Handler) ImpactStats(c *gin.Context) {
	impact, err := h.svc.Stats.Impact(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}
