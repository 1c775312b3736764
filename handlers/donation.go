package handlers

import (
	"net/http"

	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
)

type DonationRequest struct {
	FoodType       string  `json:"food_type" binding:"required"`
	Quantity       float64 `json:"quantity" binding:"required"`
	Unit           string  `json:"unit"`
	ExpiryTime     string  `json:"expiry_time"`
	PickupLocation string  `json:"pickup_location" binding:"required"`
	Description    string  `json:"description"`
}

// CreateDonation records a donation for the calling donor.
func (h *Handler) CreateDonation(c *gin.Context) {
	var req DonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	expiry, err := models.ParseOptionalLocalDateTime(req.ExpiryTime)
	if err != nil {
		respondError(c, err)
		return
	}
	donation, err := h.svc.Donations.Create(c.Request.Context(), middleware.GetUserID(c), services.DonationInput{
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		ExpiryTime:     expiry,
		PickupLocation: req.PickupLocation,
		Description:    req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Donation created",
		"points":   services.PointsForDonation,
		"donation": newDonationView(donation),
	})
}

// ListDonations lists donations, optionally filtered by ?status=,
// ?location= and ?food_type= (both substrings).
func (h *Handler) ListDonations(c *gin.Context) {
	filter := services.DonationFilter{
		Location: c.Query("location"),
		FoodType: c.Query("food_type"),
	}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseDonationStatus(s)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = status
	}
	donations, err := h.svc.Donations.Search(c.Request.Context(), filter)
	h.donationList(c, donations, err)
}

func (h *Handler) GetDonation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	donation, err := h.svc.Donations.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donation": newDonationView(donation)})
}

func (h *Handler) GetDonationHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	changes, err := h.svc.Donations.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(changes), "history": newHistoryViews(changes)})
}

// AvailableDonations lists pending donations that have not expired.
func (h *Handler) AvailableDonations(c *gin.Context) {
	donations, err := h.svc.Donations.Available(c.Request.Context())
	h.donationList(c, donations, err)
}

func (h *Handler) DonationsByStatus(c *gin.Context) {
	status, err := models.ParseDonationStatus(c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	donations, err := h.svc.Donations.ByStatus(c.Request.Context(), status)
	h.donationList(c, donations, err)
}

func (h *Handler) DonationsByDonor(c *gin.Context) {
	id, ok := idParam(c, "donorId")
	if !ok {
		return
	}
	donations, err := h.svc.Donations.ByDonor(c.Request.Context(), id)
	h.donationList(c, donations, err)
}

func (h *Handler) DonationsByNgo(c *gin.Context) {
	id, ok := idParam(c, "ngoId")
	if !ok {
		return
	}
	donations, err := h.svc.Donations.ByAssignedNgo(c.Request.Context(), id)
	h.donationList(c, donations, err)
}

func (h *Handler) DonationsByVolunteer(c *gin.Context) {
	id, ok := idParam(c, "volunteerId")
	if !ok {
		return
	}
	donations, err := h.svc.Donations.ByAssignedVolunteer(c.Request.Context(), id)
	h.donationList(c, donations, err)
}

func (h *Handler) donationList(c *gin.Context, donations []models.Donation, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(donations), "donations": newDonationViews(donations)})
}

// AssignDonationToNgo accepts a donation. An NGO can only claim it for
// itself.
func (h *Handler) AssignDonationToNgo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ngoID, ok := idParam(c, "ngoId")
	if !ok {
		return
	}
	if !isStaff(middleware.GetRole(c)) && ngoID != middleware.GetUserID(c) {
		forbidden(c, "NGOs can only accept donations for themselves")
		return
	}
	donation, err := h.svc.Donations.AssignToNgo(c.Request.Context(), id, ngoID)
	h.donationResult(c, "Donation accepted", donation, err)
}

// AssignDonationToVolunteer links a volunteer. Volunteers can only assign
// themselves.
func (h *Handler) AssignDonationToVolunteer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	volunteerID, ok := idParam(c, "volunteerId")
	if !ok {
		return
	}
	if middleware.GetRole(c) == models.RoleVolunteer && volunteerID != middleware.GetUserID(c) {
		forbidden(c, "Volunteers can only assign themselves")
		return
	}
	donation, err := h.svc.Donations.AssignToVolunteer(c.Request.Context(), id, volunteerID)
	h.donationResult(c, "Volunteer assigned", donation, err)
}

func (h *Handler) PickupDonation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	donation, err := h.svc.Donations.MarkAsPickedUp(c.Request.Context(), id)
	h.donationResult(c, "Donation picked up", donation, err)
}

func (h *Handler) DeliverDonation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	donation, err := h.svc.Donations.MarkAsDelivered(c.Request.Context(), id)
	h.donationResult(c, "Donation delivered", donation, err)
}

func (h *Handler) donationResult(c *gin.Context, msg string, donation *models.Donation, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "donation": newDonationView(donation)})
}

// DeleteDonation removes a donation. Donors may only delete their own.
func (h *Handler) DeleteDonation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if !isStaff(middleware.GetRole(c)) {
		donation, err := h.svc.Donations.FindByID(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if donation.DonorID != middleware.GetUserID(c) {
			forbidden(c, "This donation does not belong to you")
			return
		}
	}
	if err := h.svc.Donations.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted"})
}
