package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"food-rescue-api/apperr"
	"food-rescue-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delivery() DeliveryDetails {
	return DeliveryDetails{
		DeliveryLocation:    "Shelter A",
		DeliveryDate:        "2025-06-03",
		DeliveryTime:        "14:30",
		SpecialInstructions: "back door",
	}
}

func TestCreateOrderSkipsMissingDonation(t *testing.T) {
	f := setup(t)
	donor := f.register(t, "donor", models.RoleDonor)
	ngo := f.register(t, "ngo", models.RoleNGO)
	d := f.donate(t, donor.ID, "rice", "Downtown")

	order, err := f.Orders.CreateOrder(f.ctx, ngo.ID, []OrderItemInput{
		{DonationID: d.ID, RequestedQuantity: 2},
		{DonationID: 9999, RequestedQuantity: 1},
		{RequestedQuantity: 3},
	}, delivery())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d+$`, order.TrackingID)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, d.ID, order.Items[0].DonationID)
	assert.Equal(t, 2.0, order.Items[0].RequestedQuantity)
	assert.Equal(t, "kg", order.Items[0].Unit)
	assert.Equal(t, "rice", order.Items[0].FoodType)
	assert.Equal(t, 14, order.DeliveryDate.Hour())
	assert.Equal(t, 30, order.DeliveryDate.Minute())

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(order.TrackingPayload), &payload))
	assert.Equal(t, order.TrackingID, payload["orderId"])
	assert.Equal(t, "Shelter A", payload["deliveryLocation"])
	assert.Equal(t, "2025-06-03", payload["deliveryDate"])
	assert.Equal(t, "14:30", payload["deliveryTime"])
	assert.EqualValues(t, 1, payload["items"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestCreateOrderTrackingIDFromClock(t *testing.T) {
	f := setup(t)
	ngo := f.register(t, "ngo", models.RoleNGO)

	next := f.clock.t.Add(time.Millisecond)
	order, err := f.Orders.CreateOrder(f.ctx, ngo.ID, nil, delivery())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ORD-%d", next.UnixMilli()), order.TrackingID)
	assert.Empty(t, order.Items)
}

func TestCreateOrderRejections(t *testing.T) {
	f := setup(t)
	donor := f.register(t, "donor", models.RoleDonor)
	ngo := f.register(t, "ngo", models.RoleNGO)

	_, err := f.Orders.CreateOrder(f.ctx, 999, nil, delivery())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.Orders.CreateOrder(f.ctx, donor.ID, nil, delivery())
	assert.ErrorIs(t, err, apperr.ErrInvalidRole)

	bad := delivery()
	bad.DeliveryDate = "03/06/2025"
	_, err = f.Orders.CreateOrder(f.ctx, ngo.ID, nil, bad)
	assert.ErrorIs(t, err, apperr.ErrInvalidFormat)

	bad = delivery()
	bad.DeliveryTime = "half past two"
	_, err = f.Orders.CreateOrder(f.ctx, ngo.ID, nil, bad)
	assert.ErrorIs(t, err, apperr.ErrInvalidFormat)

	_, err = f.Orders.CreateOrder(f.ctx, ngo.ID, []OrderItemInput{{DonationID: 1, RequestedQuantity: -1}}, delivery())
	assert.ErrorIs(t, err, apperr.ErrInvalidFormat)

	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestOrderStatusLifecycle(t *testing.T) {
	f := setup(t)
	ngo := f.register(t, "ngo", models.RoleNGO)
	order, err := f.Orders.CreateOrder(f.ctx, ngo.ID, nil, delivery())
	require.NoError(t, err)

	_, err = f.Orders.UpdateStatus(f.ctx, order.TrackingID, models.OrderDelivered, "")
	assert.ErrorIs(t, err, apperr.ErrStaleState)

	for _, to := range []models.OrderStatus{models.OrderConfirmed, models.OrderInTransit, models.OrderDelivered} {
		order, err = f.Orders.UpdateStatus(f.ctx, order.TrackingID, to, "")
		require.NoError(t, err)
		assert.Equal(t, to, order.Status)
	}

	_, err = f.Orders.UpdateStatus(f.ctx, order.TrackingID, models.OrderCancelled, "")
	assert.ErrorIs(t, err, apperr.ErrStaleState)

	_, err = f.Orders.UpdateStatus(f.ctx, "ORD-0", models.OrderConfirmed, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	delivered, err := f.Orders.ByStatus(f.ctx, models.OrderDelivered)
	require.NoError(t, err)
	assert.Len(t, delivered, 1)

	history, err := f.Orders.History(f.ctx, order.TrackingID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "IN_TRANSIT", history[3].FromStatus)
	assert.Equal(t, "DELIVERED", history[3].ToStatus)
}

func TestOrderQueriesAndQRCode(t *testing.T) {
	f := setup(t)
	ngo := f.register(t, "ngo", models.RoleNGO)
	other := f.register(t, "other", models.RoleNGO)

	first, err := f.Orders.CreateOrder(f.ctx, ngo.ID, nil, delivery())
	require.NoError(t, err)
	second, err := f.Orders.CreateOrder(f.ctx, ngo.ID, nil, delivery())
	require.NoError(t, err)
	_, err = f.Orders.CreateOrder(f.ctx, other.ID, nil, delivery())
	require.NoError(t, err)
	assert.NotEqual(t, first.TrackingID, second.TrackingID)

	mine, err := f.Orders.ByNgo(f.ctx, ngo.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.TrackingID, mine[0].TrackingID)

	all, err := f.Orders.All(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	png, err := f.Orders.QRCode(f.ctx, first.TrackingID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = f.Orders.QRCode(f.ctx, "ORD-0")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
