package statemachine

import (
	"testing"

	"food-rescue-api/apperr"
	"food-rescue-api/models"

	"github.com/stretchr/testify/assert"
)

func TestDonationMachineOnlyMovesForward(t *testing.T) {
	order := []models.DonationStatus{
		models.DonationPending,
		models.DonationAccepted,
		models.DonationPickedUp,
		models.DonationDelivered,
	}
	for i, from := range order {
		for j, to := range order {
			err := Donations.CanTransition(from, to)
			if j == i+1 {
				assert.NoError(t, err, "%s → %s", from, to)
			} else {
				assert.ErrorIs(t, err, apperr.ErrStaleState, "%s → %s", from, to)
			}
		}
	}
	assert.True(t, Donations.IsTerminal(models.DonationDelivered))
}

func TestPermits(t *testing.T) {
	assert.True(t, Donations.Permits(models.DonationPending, models.DonationAccepted, models.RoleNGO))
	assert.False(t, Donations.Permits(models.DonationPending, models.DonationAccepted, models.RoleDonor))
	assert.False(t, Donations.Permits(models.DonationPending, models.DonationDelivered, models.RoleAdmin))
	assert.True(t, Orders.Permits(models.OrderConfirmed, models.OrderInTransit, models.RoleVolunteer))
	assert.False(t, Orders.Permits(models.OrderInTransit, models.OrderCancelled, models.RoleNGO))
}

func TestActorsFor(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.Role{models.RoleVolunteer, models.RoleNGO, models.RoleAdmin},
		Donations.ActorsFor(models.DonationDelivered))
	assert.ElementsMatch(t,
		[]models.Role{models.RoleNGO, models.RoleAdmin},
		Orders.ActorsFor(models.OrderCancelled))
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t,
		[]models.RequestStatus{models.RequestMatched, models.RequestCancelled},
		Requests.ValidTransitionsFrom(models.RequestOpen))
	assert.Empty(t, Requests.ValidTransitionsFrom(models.RequestFulfilled))
	assert.True(t, Orders.IsTerminal(models.OrderCancelled))
}

func TestCanTransitionDescribesTerminalState(t *testing.T) {
	err := Orders.CanTransition(models.OrderDelivered, models.OrderCancelled)
	assert.ErrorContains(t, err, "none (terminal state)")
}
