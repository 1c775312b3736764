package services

import (
	"context"

	"food-rescue-api/models"
)

// Matcher proposes pending donations for a request. It never changes
// anything; acting on a proposal is up to the caller.
type Matcher struct {
	*env
}

// FindMatchingDonations returns PENDING donations whose food type contains
// the request's food type and whose pickup location contains its delivery
// location, both case-insensitively. No match is an empty slice, not an
// error.
func (m *Matcher) FindMatchingDonations(ctx context.Context, requestID uint) ([]models.Donation, error) {
	var request models.FoodRequest
	if err := m.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		return nil, wrapNotFound(err, "request", requestID)
	}

	var donations []models.Donation
	err := m.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", models.DonationPending).
		Where("LOWER(food_type) LIKE ? ESCAPE '!'", containsPattern(request.FoodTypeNeeded)).
		Where("LOWER(pickup_location) LIKE ? ESCAPE '!'", containsPattern(request.DeliveryLocation)).
		Order("id").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}
