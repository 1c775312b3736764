package handlers

import (
	"net/http"

	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"
	"food-rescue-api/statemachine"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	// NgoID is only honoured for admins; NGOs always order for themselves.
	NgoID           uint                      `json:"ngo_id"`
	Items           []services.OrderItemInput `json:"items"`
	DeliveryDetails services.DeliveryDetails  `json:"delivery_details"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// PlaceOrder assembles an order. Line items naming unknown donations are
// dropped rather than failing the order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ngoID := middleware.GetUserID(c)
	if isStaff(middleware.GetRole(c)) {
		if req.NgoID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ngo_id is required"})
			return
		}
		ngoID = req.NgoID
	}

	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), ngoID, req.Items, req.DeliveryDetails)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Order placed successfully",
		"order_id":  order.TrackingID,
		"qr_code":   order.TrackingPayload,
		"requested": len(req.Items),
		"order":     newOrderView(order),
	})
}

// ListOrders returns every order, optionally filtered by ?status=.
func (h *Handler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		orders []models.Order
		err    error
	)
	if s := c.Query("status"); s != "" {
		status, perr := models.ParseOrderStatus(s)
		if perr != nil {
			respondError(c, perr)
			return
		}
		orders, err = h.svc.Orders.ByStatus(ctx, status)
	} else {
		orders, err = h.svc.Orders.All(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	summary := map[models.OrderStatus]int{}
	for _, o := range orders {
		summary[o.Status]++
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        newOrderViews(orders),
	})
}

func (h *Handler) OrdersByNgo(c *gin.Context) {
	ngoID, ok := idParam(c, "ngoId")
	if !ok {
		return
	}
	if middleware.GetRole(c) == models.RoleNGO && ngoID != middleware.GetUserID(c) {
		forbidden(c, "NGOs can only list their own orders")
		return
	}
	orders, err := h.svc.Orders.ByNgo(c.Request.Context(), ngoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": newOrderViews(orders)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderView(order)})
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	changes, err := h.svc.Orders.History(c.Request.Context(), order.TrackingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(changes), "history": newHistoryViews(changes)})
}

// GetOrderQRCode serves the tracking payload as a PNG QR code.
func (h *Handler) GetOrderQRCode(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	png, err := h.svc.Orders.QRCode(c.Request.Context(), order.TrackingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// UpdateOrderStatus moves an order along its lifecycle if the caller's role
// may make that move.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	to, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := statemachine.Orders.CanTransition(order.Status, to); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         to,
			"reason":            err.Error(),
			"valid_next_states": statemachine.Orders.ValidTransitionsFrom(order.Status),
		})
		return
	}
	role := middleware.GetRole(c)
	if !statemachine.Orders.Permits(order.Status, to, role) {
		forbidden(c, "Role "+string(role)+" cannot move an order from "+string(order.Status)+" to "+string(to))
		return
	}

	prevStatus := order.Status
	updated, err := h.svc.Orders.UpdateStatus(c.Request.Context(), order.TrackingID, to, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        updated.TrackingID,
		"previous_status": prevStatus,
		"current_status":  updated.Status,
	})
}

// visibleOrder loads :trackingId. NGOs only see their own orders.
func (h *Handler) visibleOrder(c *gin.Context) (*models.Order, bool) {
	order, err := h.svc.Orders.FindByTrackingID(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if middleware.GetRole(c) == models.RoleNGO && order.NgoID != middleware.GetUserID(c) {
		forbidden(c, "This order does not belong to you")
		return nil, false
	}
	return order, true
}
