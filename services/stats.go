package services

import (
	"context"
	"math"

	"food-rescue-api/models"

	"gorm.io/gorm"
)

// Rough conversion factors per unit of delivered food.
const (
	mealsPerUnit = 2.5
	co2PerUnit   = 2.1
)

type Dashboard struct {
	TotalDonors        int64   `json:"totalDonors"`
	TotalNgos          int64   `json:"totalNgos"`
	TotalVolunteers    int64   `json:"totalVolunteers"`
	TotalDonations     int64   `json:"totalDonations"`
	PendingDonations   int64   `json:"pendingDonations"`
	DeliveredDonations int64   `json:"deliveredDonations"`
	TotalFoodSaved     float64 `json:"totalFoodSaved"`
	TotalRequests      int64   `json:"totalRequests"`
	OpenRequests       int64   `json:"openRequests"`
	FulfilledRequests  int64   `json:"fulfilledRequests"`
	TotalPeopleServed  int64   `json:"totalPeopleServed"`
}

type Impact struct {
	FoodSavedKg          float64 `json:"foodSavedKg"`
	MealsProvided        int64   `json:"mealsProvided"`
	PeopleServed         int64   `json:"peopleServed"`
	SuccessfulDeliveries int64   `json:"successfulDeliveries"`
	CO2Saved             int64   `json:"co2Saved"`
}

// StatsService computes read-only aggregates for the dashboard.
type StatsService struct {
	*env
}

func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var d Dashboard
	counts := []struct {
		dst   *int64
		model any
		where string
		arg   any
	}{
		{&d.TotalDonors, &models.User{}, "role = ?", models.RoleDonor},
		{&d.TotalNgos, &models.User{}, "role = ?", models.RoleNGO},
		{&d.TotalVolunteers, &models.User{}, "role = ?", models.RoleVolunteer},
		{&d.TotalDonations, &models.Donation{}, "", nil},
		{&d.PendingDonations, &models.Donation{}, "status = ?", models.DonationPending},
		{&d.DeliveredDonations, &models.Donation{}, "status = ?", models.DonationDelivered},
		{&d.TotalRequests, &models.FoodRequest{}, "", nil},
		{&d.OpenRequests, &models.FoodRequest{}, "status = ?", models.RequestOpen},
		{&d.FulfilledRequests, &models.FoodRequest{}, "status = ?", models.RequestFulfilled},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.arg)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var err error
	if d.TotalFoodSaved, err = foodSaved(db); err != nil {
		return nil, err
	}
	if d.TotalPeopleServed, err = peopleServed(db); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *StatsService) Impact(ctx context.Context) (*Impact, error) {
	db := s.db.WithContext(ctx)
	saved, err := foodSaved(db)
	if err != nil {
		return nil, err
	}
	served, err := peopleServed(db)
	if err != nil {
		return nil, err
	}
	var deliveries int64
	if err := db.Model(&models.Donation{}).Where("status = ?", models.DonationDelivered).Count(&deliveries).Error; err != nil {
		return nil, err
	}
	return &Impact{
		FoodSavedKg:          saved,
		MealsProvided:        int64(math.Round(saved * mealsPerUnit)),
		PeopleServed:         served,
		SuccessfulDeliveries: deliveries,
		CO2Saved:             int64(math.Round(saved * co2PerUnit)),
	}, nil
}

// foodSaved sums the quantity of delivered donations, whatever their unit.
func foodSaved(db *gorm.DB) (float64, error) {
	var total float64
	err := db.Model(&models.Donation{}).
		Where("status = ?", models.DonationDelivered).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func peopleServed(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&models.FoodRequest{}).
		Where("status = ?", models.RequestFulfilled).
		Select("COALESCE(SUM(people_served), 0)").
		Scan(&total).Error
	return total, err
}
