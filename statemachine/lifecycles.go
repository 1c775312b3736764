package statemachine

import "food-rescue-api/models"

var (
	ngoOrAdmin     = []models.Role{models.RoleNGO, models.RoleAdmin}
	fieldWorkers   = []models.Role{models.RoleVolunteer, models.RoleNGO, models.RoleAdmin}
	courierOrAdmin = []models.Role{models.RoleVolunteer, models.RoleAdmin}
	adminOnly      = []models.Role{models.RoleAdmin}
)

// Donations: PENDING → ACCEPTED → PICKED_UP → DELIVERED. Deletion is a hard
// removal outside the machine.
var Donations = New("donation",
	// NGO claims the donation
	Transition[models.DonationStatus]{From: models.DonationPending, To: models.DonationAccepted, Actors: ngoOrAdmin},
	Transition[models.DonationStatus]{From: models.DonationAccepted, To: models.DonationPickedUp, Actors: fieldWorkers},
	Transition[models.DonationStatus]{From: models.DonationPickedUp, To: models.DonationDelivered, Actors: fieldWorkers},
)

// Requests: OPEN → MATCHED → FULFILLED, cancellable until fulfilled.
var Requests = New("request",
	Transition[models.RequestStatus]{From: models.RequestOpen, To: models.RequestMatched, Actors: ngoOrAdmin},
	Transition[models.RequestStatus]{From: models.RequestMatched, To: models.RequestFulfilled, Actors: ngoOrAdmin},
	Transition[models.RequestStatus]{From: models.RequestOpen, To: models.RequestCancelled, Actors: ngoOrAdmin},
	Transition[models.RequestStatus]{From: models.RequestMatched, To: models.RequestCancelled, Actors: ngoOrAdmin},
)

// Orders: PENDING → CONFIRMED → IN_TRANSIT → DELIVERED, cancellable before dispatch.
var Orders = New("order",
	Transition[models.OrderStatus]{From: models.OrderPending, To: models.OrderConfirmed, Actors: adminOnly},
	Transition[models.OrderStatus]{From: models.OrderConfirmed, To: models.OrderInTransit, Actors: courierOrAdmin},
	Transition[models.OrderStatus]{From: models.OrderInTransit, To: models.OrderDelivered, Actors: courierOrAdmin},
	// NGO may withdraw an order until it is on the road
	Transition[models.OrderStatus]{From: models.OrderPending, To: models.OrderCancelled, Actors: ngoOrAdmin},
	Transition[models.OrderStatus]{From: models.OrderConfirmed, To: models.OrderCancelled, Actors: ngoOrAdmin},
)
