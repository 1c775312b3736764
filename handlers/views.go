package handlers

import (
	"food-rescue-api/models"
	"food-rescue-api/statemachine"
)

// Response views render timestamps as local date-times without an offset.

type userView struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	Role      models.Role `json:"role"`
	Enabled   bool        `json:"enabled"`
	Points    int         `json:"points"`
	CreatedAt string      `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		Enabled:   u.Enabled,
		Points:    u.Points,
		CreatedAt: models.FormatLocal(u.CreatedAt),
	}
}

func newUserViews(users []models.User) []userView {
	views := make([]userView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i])
	}
	return views
}

func nameOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

type donationView struct {
	ID                    uint                    `json:"id"`
	DonorID               uint                    `json:"donor_id"`
	DonorName             string                  `json:"donor_name"`
	FoodType              string                  `json:"food_type"`
	Quantity              float64                 `json:"quantity"`
	Unit                  string                  `json:"unit"`
	ExpiryTime            *string                 `json:"expiry_time"`
	PickupLocation        string                  `json:"pickup_location"`
	Description           string                  `json:"description"`
	Status                models.DonationStatus   `json:"status"`
	AssignedNgoID         *uint                   `json:"assigned_ngo_id"`
	AssignedNgoName       string                  `json:"assigned_ngo_name,omitempty"`
	AssignedVolunteerID   *uint                   `json:"assigned_volunteer_id"`
	AssignedVolunteerName string                  `json:"assigned_volunteer_name,omitempty"`
	PickupTime            *string                 `json:"pickup_time"`
	DeliveredTime         *string                 `json:"delivered_time"`
	CreatedAt             string                  `json:"created_at"`
	UpdatedAt             string                  `json:"updated_at"`
	ValidNextStatuses     []models.DonationStatus `json:"valid_next_statuses"`
}

func newDonationView(d *models.Donation) donationView {
	return donationView{
		ID:                    d.ID,
		DonorID:               d.DonorID,
		DonorName:             nameOf(d.Donor),
		FoodType:              d.FoodType,
		Quantity:              d.Quantity,
		Unit:                  d.Unit,
		ExpiryTime:            models.FormatLocalPtr(d.ExpiryTime),
		PickupLocation:        d.PickupLocation,
		Description:           d.Description,
		Status:                d.Status,
		AssignedNgoID:         d.AssignedNgoID,
		AssignedNgoName:       nameOf(d.AssignedNgo),
		AssignedVolunteerID:   d.AssignedVolunteerID,
		AssignedVolunteerName: nameOf(d.AssignedVolunteer),
		PickupTime:            models.FormatLocalPtr(d.PickupTime),
		DeliveredTime:         models.FormatLocalPtr(d.DeliveredTime),
		CreatedAt:             models.FormatLocal(d.CreatedAt),
		UpdatedAt:             models.FormatLocal(d.UpdatedAt),
		ValidNextStatuses:     statemachine.Donations.ValidTransitionsFrom(d.Status),
	}
}

func newDonationViews(donations []models.Donation) []donationView {
	views := make([]donationView, len(donations))
	for i := range donations {
		views[i] = newDonationView(&donations[i])
	}
	return views
}

type requestView struct {
	ID                uint                   `json:"id"`
	NgoID             uint                   `json:"ngo_id"`
	NgoName           string                 `json:"ngo_name"`
	FoodTypeNeeded    string                 `json:"food_type_needed"`
	QuantityNeeded    float64                `json:"quantity_needed"`
	Unit              string                 `json:"unit"`
	DeliveryLocation  string                 `json:"delivery_location"`
	Description       string                 `json:"description"`
	NeededBy          *string                `json:"needed_by"`
	Priority          models.Priority        `json:"priority"`
	PeopleServed      int                    `json:"people_served"`
	Status            models.RequestStatus   `json:"status"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
	ValidNextStatuses []models.RequestStatus `json:"valid_next_statuses"`
}

func newRequestView(r *models.FoodRequest) requestView {
	return requestView{
		ID:                r.ID,
		NgoID:             r.NgoID,
		NgoName:           nameOf(r.Ngo),
		FoodTypeNeeded:    r.FoodTypeNeeded,
		QuantityNeeded:    r.QuantityNeeded,
		Unit:              r.Unit,
		DeliveryLocation:  r.DeliveryLocation,
		Description:       r.Description,
		NeededBy:          models.FormatLocalPtr(r.NeededBy),
		Priority:          r.Priority,
		PeopleServed:      r.PeopleServed,
		Status:            r.Status,
		CreatedAt:         models.FormatLocal(r.CreatedAt),
		UpdatedAt:         models.FormatLocal(r.UpdatedAt),
		ValidNextStatuses: statemachine.Requests.ValidTransitionsFrom(r.Status),
	}
}

func newRequestViews(requests []models.FoodRequest) []requestView {
	views := make([]requestView, len(requests))
	for i := range requests {
		views[i] = newRequestView(&requests[i])
	}
	return views
}

type orderItemView struct {
	DonationID        uint    `json:"donation_id"`
	FoodType          string  `json:"food_type"`
	RequestedQuantity float64 `json:"requested_quantity"`
	Unit              string  `json:"unit"`
}

type orderView struct {
	ID                  uint                 `json:"id"`
	TrackingID          string               `json:"tracking_id"`
	NgoID               uint                 `json:"ngo_id"`
	NgoName             string               `json:"ngo_name"`
	DeliveryLocation    string               `json:"delivery_location"`
	DeliveryDate        string               `json:"delivery_date"`
	DeliveryTime        string               `json:"delivery_time"`
	SpecialInstructions string               `json:"special_instructions"`
	QRCode              string               `json:"qr_code"`
	Status              models.OrderStatus   `json:"status"`
	Items               []orderItemView      `json:"items"`
	CreatedAt           string               `json:"created_at"`
	UpdatedAt           string               `json:"updated_at"`
	ValidNextStatuses   []models.OrderStatus `json:"valid_next_statuses"`
}

func newOrderView(o *models.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			DonationID:        it.DonationID,
			FoodType:          it.FoodType,
			RequestedQuantity: it.RequestedQuantity,
			Unit:              it.Unit,
		}
	}
	return orderView{
		ID:                  o.ID,
		TrackingID:          o.TrackingID,
		NgoID:               o.NgoID,
		NgoName:             nameOf(o.Ngo),
		DeliveryLocation:    o.DeliveryLocation,
		DeliveryDate:        models.FormatLocal(o.DeliveryDate),
		DeliveryTime:        o.DeliveryTime,
		SpecialInstructions: o.SpecialInstructions,
		QRCode:              o.TrackingPayload,
		Status:              o.Status,
		Items:               items,
		CreatedAt:           models.FormatLocal(o.CreatedAt),
		UpdatedAt:           models.FormatLocal(o.UpdatedAt),
		ValidNextStatuses:   statemachine.Orders.ValidTransitionsFrom(o.Status),
	}
}

func newOrderViews(orders []models.Order) []orderView {
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i])
	}
	return views
}

type statusChangeView struct {
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	Note       string `json:"note,omitempty"`
	At         string `json:"at"`
}

func newHistoryViews(changes []models.StatusChange) []statusChangeView {
	views := make([]statusChangeView, len(changes))
	for i, ch := range changes {
		views[i] = statusChangeView{
			FromStatus: ch.FromStatus,
			ToStatus:   ch.ToStatus,
			Note:       ch.Note,
			At:         models.FormatLocal(ch.CreatedAt),
		}
	}
	return views
}
