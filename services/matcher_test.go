package services

import (
	"testing"

	"food-rescue-api/apperr"
	"food-rescue-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatchingDonations(t *testing.T) {
	f := setup(t)
	donor := f.register(t, "donor", models.RoleDonor)
	ngo := f.register(t, "ngo", models.RoleNGO)

	hit := f.donate(t, donor.ID, "Brown RICE", "12 downtown plaza")
	f.donate(t, donor.ID, "rice", "Uptown")              // wrong location
	f.donate(t, donor.ID, "pasta", "Downtown")           // wrong food
	taken := f.donate(t, donor.ID, "rice", "Downtown 2") // no longer pending
	_, err := f.Donations.AssignToNgo(f.ctx, taken.ID, ngo.ID)
	require.NoError(t, err)

	req, err := f.Requests.Create(f.ctx, ngo.ID, RequestInput{
		FoodTypeNeeded: "Rice", QuantityNeeded: 5, DeliveryLocation: "DOWNTOWN",
	})
	require.NoError(t, err)

	matches, err := f.Matcher.FindMatchingDonations(f.ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, hit.ID, matches[0].ID)

	// read-only
	got, err := f.Donations.FindByID(f.ctx, hit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationPending, got.Status)
}

func TestFindMatchingDonationsEmpty(t *testing.T) {
	f := setup(t)
	ngo := f.register(t, "ngo", models.RoleNGO)
	req, err := f.Requests.Create(f.ctx, ngo.ID, RequestInput{
		FoodTypeNeeded: "caviar", QuantityNeeded: 1, DeliveryLocation: "Anywhere",
	})
	require.NoError(t, err)

	matches, err := f.Matcher.FindMatchingDonations(f.ctx, req.ID)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)

	_, err = f.Matcher.FindMatchingDonations(f.ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
