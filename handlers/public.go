package handlers

import (
	"net/http"

	"food-rescue-api/models"
	"food-rescue-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Food Rescue Coordination API",
		"version": "1.0.0",
	})
}

type machineInfo[S ~string] struct {
	Transitions    []statemachine.Transition[S] `json:"transitions"`
	TerminalStates []S                          `json:"terminal_states"`
	Description    string                       `json:"description"`
}

func describe[S ~string](m *statemachine.Machine[S], states []S, desc string) machineInfo[S] {
	var terminal []S
	for _, s := range states {
		if m.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	return machineInfo[S]{Transitions: m.Transitions(), TerminalStates: terminal, Description: desc}
}

// GetStateMachineInfo returns every lifecycle with the roles allowed to
// drive each transition.
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"donation": describe(statemachine.Donations, []models.DonationStatus{
			models.DonationPending, models.DonationAccepted, models.DonationPickedUp, models.DonationDelivered,
		}, "Donation lifecycle; deletion is a hard removal from any state"),
		"request": describe(statemachine.Requests, []models.RequestStatus{
			models.RequestOpen, models.RequestMatched, models.RequestFulfilled, models.RequestCancelled,
		}, "NGO food request lifecycle"),
		"order": describe(statemachine.Orders, []models.OrderStatus{
			models.OrderPending, models.OrderConfirmed, models.OrderInTransit, models.OrderDelivered, models.OrderCancelled,
		}, "Fulfillment order lifecycle"),
	})
}
