package handlers

import (
	"net/http"

	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
)

type FoodRequestRequest struct {
	FoodTypeNeeded   string  `json:"food_type_needed" binding:"required"`
	QuantityNeeded   float64 `json:"quantity_needed" binding:"required"`
	Unit             string  `json:"unit"`
	DeliveryLocation string  `json:"delivery_location" binding:"required"`
	Description      string  `json:"description"`
	NeededBy         string  `json:"needed_by"`
	Priority         string  `json:"priority"`
	PeopleServed     int     `json:"people_served"`
}

type CancelRequestRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CreateFoodRequest(c *gin.Context) {
	var req FoodRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	neededBy, err := models.ParseOptionalLocalDateTime(req.NeededBy)
	if err != nil {
		respondError(c, err)
		return
	}
	request, err := h.svc.Requests.Create(c.Request.Context(), middleware.GetUserID(c), services.RequestInput{
		FoodTypeNeeded:   req.FoodTypeNeeded,
		QuantityNeeded:   req.QuantityNeeded,
		Unit:             req.Unit,
		DeliveryLocation: req.DeliveryLocation,
		Description:      req.Description,
		NeededBy:         neededBy,
		Priority:         req.Priority,
		PeopleServed:     req.PeopleServed,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request created", "request": newRequestView(request)})
}

// ListFoodRequests supports the same filters as ListDonations.
func (h *Handler) ListFoodRequests(c *gin.Context) {
	filter := services.RequestFilter{
		Location: c.Query("location"),
		FoodType: c.Query("food_type"),
	}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseRequestStatus(s)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = status
	}
	requests, err := h.svc.Requests.Search(c.Request.Context(), filter)
	h.requestList(c, requests, err)
}

func (h *Handler) GetFoodRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	request, err := h.svc.Requests.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": newRequestView(request)})
}

func (h *Handler) GetFoodRequestHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	changes, err := h.svc.Requests.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(changes), "history": newHistoryViews(changes)})
}

// ActiveFoodRequests lists open requests with a future deadline, most
// urgent first.
func (h *Handler) ActiveFoodRequests(c *gin.Context) {
	requests, err := h.svc.Requests.Active(c.Request.Context())
	h.requestList(c, requests, err)
}

func (h *Handler) FoodRequestsByStatus(c *gin.Context) {
	status, err := models.ParseRequestStatus(c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	requests, err := h.svc.Requests.ByStatus(c.Request.Context(), status)
	h.requestList(c, requests, err)
}

func (h *Handler) FoodRequestsByPriority(c *gin.Context) {
	priority, err := models.ParsePriority(c.Param("priority"))
	if err != nil {
		respondError(c, err)
		return
	}
	requests, err := h.svc.Requests.ByPriority(c.Request.Context(), priority)
	h.requestList(c, requests, err)
}

func (h *Handler) FoodRequestsByNgo(c *gin.Context) {
	id, ok := idParam(c, "ngoId")
	if !ok {
		return
	}
	requests, err := h.svc.Requests.ByNgo(c.Request.Context(), id)
	h.requestList(c, requests, err)
}

func (h *Handler) requestList(c *gin.Context, requests []models.FoodRequest, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(requests), "requests": newRequestViews(requests)})
}

// MatchingDonations proposes pending donations for a request.
func (h *Handler) MatchingDonations(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	donations, err := h.svc.Matcher.FindMatchingDonations(c.Request.Context(), id)
	h.donationList(c, donations, err)
}

func (h *Handler) MatchFoodRequest(c *gin.Context) {
	id, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	request, err := h.svc.Requests.MarkAsMatched(c.Request.Context(), id)
	h.requestResult(c, "Request matched", request, err)
}

func (h *Handler) FulfillFoodRequest(c *gin.Context) {
	id, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	request, err := h.svc.Requests.MarkAsFulfilled(c.Request.Context(), id)
	h.requestResult(c, "Request fulfilled", request, err)
}

func (h *Handler) CancelFoodRequest(c *gin.Context) {
	id, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	var req CancelRequestRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)
	request, err := h.svc.Requests.Cancel(c.Request.Context(), id, req.Reason)
	h.requestResult(c, "Request cancelled", request, err)
}

func (h *Handler) DeleteFoodRequest(c *gin.Context) {
	id, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	if err := h.svc.Requests.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

// ownedRequest parses :id and checks that a non-admin caller owns the
// request.
func (h *Handler) ownedRequest(c *gin.Context) (uint, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return 0, false
	}
	if isStaff(middleware.GetRole(c)) {
		return id, true
	}
	request, err := h.svc.Requests.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	if request.NgoID != middleware.GetUserID(c) {
		forbidden(c, "This request does not belong to you")
		return 0, false
	}
	return id, true
}

func (h *Handler) requestResult(c *gin.Context, msg string, request *models.FoodRequest, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "request": newRequestView(request)})
}
