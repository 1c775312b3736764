package services

import (
	"context"
	"fmt"
	"time"

	"food-rescue-api/apperr"
	"food-rescue-api/logger"
	"food-rescue-api/metrics"
	"food-rescue-api/models"
	"food-rescue-api/statemachine"

	"gorm.io/gorm"
)

const (
	reasonDonationCreated   = "donation_created"
	reasonDonationDelivered = "donation_delivered"
)

type DonationInput struct {
	FoodType       string  `validate:"required,max=100"`
	Quantity       float64 `validate:"gt=0"`
	Unit           string  `validate:"max=20"`
	ExpiryTime     *time.Time
	PickupLocation string `validate:"required,max=255"`
	Description    string `validate:"max=500"`
}

// DonationService drives a donation from PENDING to DELIVERED.
type DonationService struct {
	*env
	identity *IdentityService
}

func (s *DonationService) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Donor").
		Preload("AssignedNgo").
		Preload("AssignedVolunteer")
}

// Create stores a PENDING donation and awards the donor creation points,
// whatever becomes of the donation later.
func (s *DonationService) Create(ctx context.Context, donorID uint, in DonationInput) (*models.Donation, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	now := s.now()
	donation := models.Donation{
		DonorID:        donorID,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		ExpiryTime:     in.ExpiryTime,
		PickupLocation: in.PickupLocation,
		Description:    in.Description,
		Status:         models.DonationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donor models.User
		if err := tx.First(&donor, donorID).Error; err != nil {
			return wrapNotFound(err, "donor", donorID)
		}
		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		if err := recordChange(tx, models.EntityDonation, donation.ID, "", string(models.DonationPending), "created", now); err != nil {
			return err
		}
		return s.identity.awardPoints(tx, donorID, PointsForDonation, reasonDonationCreated, &donation.ID)
	})
	if err != nil {
		return nil, err
	}
	recordPoints(reasonDonationCreated, PointsForDonation)
	logger.WithCtx(ctx).Info("donation created", "donation_id", donation.ID, "donor_id", donorID)
	return s.FindByID(ctx, donation.ID)
}

// AssignToNgo accepts a pending donation on behalf of an NGO.
func (s *DonationService) AssignToNgo(ctx context.Context, id, ngoID uint) (*models.Donation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findWithRole(tx, ngoID, models.RoleNGO); err != nil {
			return err
		}
		_, err := applyTransition(tx, statemachine.Donations, &models.Donation{}, models.EntityDonation,
			id, models.DonationAccepted, map[string]any{"assigned_ngo_id": ngoID},
			fmt.Sprintf("assigned to ngo %d", ngoID), s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.transitioned(ctx, id, models.DonationAccepted)
}

// AssignToVolunteer links a volunteer while the donation has not yet been
// picked up. The status does not change.
func (s *DonationService) AssignToVolunteer(ctx context.Context, id, volunteerID uint) (*models.Donation, error) {
	assignable := []models.DonationStatus{models.DonationPending, models.DonationAccepted}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findWithRole(tx, volunteerID, models.RoleVolunteer); err != nil {
			return err
		}
		res := tx.Model(&models.Donation{}).
			Where("id = ? AND status IN ?", id, assignable).
			Updates(map[string]any{"assigned_volunteer_id": volunteerID, "updated_at": s.now()})
		if res.Error != nil {
			return fmt.Errorf("assign volunteer: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		found, err := exists(tx, &models.Donation{}, "id = ?", id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("donation %d: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("donation %d is past pickup: %w", id, apperr.ErrStaleState)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *DonationService) MarkAsPickedUp(ctx context.Context, id uint) (*models.Donation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		_, err := applyTransition(tx, statemachine.Donations, &models.Donation{}, models.EntityDonation,
			id, models.DonationPickedUp, map[string]any{"pickup_time": now}, "", now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.transitioned(ctx, id, models.DonationPickedUp)
}

// MarkAsDelivered completes the donation and awards the donor delivery
// points. A second call fails with apperr.ErrStaleState and awards nothing.
func (s *DonationService) MarkAsDelivered(ctx context.Context, id uint) (*models.Donation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		if _, err := applyTransition(tx, statemachine.Donations, &models.Donation{}, models.EntityDonation,
			id, models.DonationDelivered, map[string]any{"delivered_time": now}, "", now); err != nil {
			return err
		}
		var donation models.Donation
		if err := tx.Select("id", "donor_id").First(&donation, id).Error; err != nil {
			return wrapNotFound(err, "donation", id)
		}
		return s.identity.awardPoints(tx, donation.DonorID, PointsForDelivery, reasonDonationDelivered, &donation.ID)
	})
	if err != nil {
		return nil, err
	}
	recordPoints(reasonDonationDelivered, PointsForDelivery)
	return s.transitioned(ctx, id, models.DonationDelivered)
}

// Delete hard-removes a donation in any status.
func (s *DonationService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Donation{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete donation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("donation %d: %w", id, apperr.ErrNotFound)
	}
	logger.WithCtx(ctx).Info("donation deleted", "donation_id", id)
	return nil
}

func (s *DonationService) transitioned(ctx context.Context, id uint, to models.DonationStatus) (*models.Donation, error) {
	metrics.Transitions.WithLabelValues(statemachine.Donations.Name(), string(to)).Inc()
	logger.WithCtx(ctx).Info("donation status changed", "donation_id", id, "status", to)
	return s.FindByID(ctx, id)
}

func (s *DonationService) FindByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := s.query(ctx).First(&donation, id).Error; err != nil {
		return nil, wrapNotFound(err, "donation", id)
	}
	return &donation, nil
}

// History returns the donation's status changes, oldest first.
func (s *DonationService) History(ctx context.Context, id uint) ([]models.StatusChange, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history(ctx, models.EntityDonation, id)
}

func (s *DonationService) All(ctx context.Context) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).Order("id").Find(&donations).Error
	return donations, err
}

// ByDonor lists a donor's donations newest first.
func (s *DonationService) ByDonor(ctx context.Context, donorID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).Where("donor_id = ?", donorID).Order("created_at DESC, id DESC").Find(&donations).Error
	return donations, err
}

func (s *DonationService) ByStatus(ctx context.Context, status models.DonationStatus) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).Where("status = ?", status).Order("id").Find(&donations).Error
	return donations, err
}

// Available lists pending donations that have not expired. Expired pending
// donations stay PENDING; nothing sweeps them.
func (s *DonationService) Available(ctx context.Context) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).
		Where("status = ? AND expiry_time > ?", models.DonationPending, s.now()).
		Order("expiry_time, id").
		Find(&donations).Error
	return donations, err
}

// DonationFilter narrows Search. Zero fields match everything; Location and
// FoodType are case-insensitive substrings.
type DonationFilter struct {
	Location string
	FoodType string
	Status   models.DonationStatus
}

func (s *DonationService) ByLocation(ctx context.Context, location string) ([]models.Donation, error) {
	return s.Search(ctx, DonationFilter{Location: location})
}

func (s *DonationService) ByFoodType(ctx context.Context, foodType string) ([]models.Donation, error) {
	return s.Search(ctx, DonationFilter{FoodType: foodType})
}

func (s *DonationService) Search(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	q := s.query(ctx)
	if f.Location != "" {
		q = q.Where("LOWER(pickup_location) LIKE ? ESCAPE '!'", containsPattern(f.Location))
	}
	if f.FoodType != "" {
		q = q.Where("LOWER(food_type) LIKE ? ESCAPE '!'", containsPattern(f.FoodType))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var donations []models.Donation
	err := q.Order("id").Find(&donations).Error
	return donations, err
}

func (s *DonationService) ByAssignedNgo(ctx context.Context, ngoID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).Where("assigned_ngo_id = ?", ngoID).Order("id").Find(&donations).Error
	return donations, err
}

func (s *DonationService) ByAssignedVolunteer(ctx context.Context, volunteerID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.query(ctx).Where("assigned_volunteer_id = ?", volunteerID).Order("id").Find(&donations).Error
	return donations, err
}
