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

type RequestInput struct {
	FoodTypeNeeded   string  `validate:"required,max=100"`
	QuantityNeeded   float64 `validate:"gt=0"`
	Unit             string  `validate:"max=20"`
	DeliveryLocation string  `validate:"required,max=255"`
	Description      string  `validate:"max=500"`
	NeededBy         *time.Time
	// Priority is parsed strictly; empty means MEDIUM.
	Priority     string
	PeopleServed int `validate:"gte=0"`
}

// priorityRank sorts HIGH, MEDIUM, LOW in that order under DESC.
const priorityRank = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END DESC"

type RequestService struct {
	*env
}

func (s *RequestService) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Ngo")
}

func (s *RequestService) Create(ctx context.Context, ngoID uint, in RequestInput) (*models.FoodRequest, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	priority, err := models.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	now := s.now()
	request := models.FoodRequest{
		NgoID:            ngoID,
		FoodTypeNeeded:   in.FoodTypeNeeded,
		QuantityNeeded:   in.QuantityNeeded,
		Unit:             in.Unit,
		DeliveryLocation: in.DeliveryLocation,
		Description:      in.Description,
		NeededBy:         in.NeededBy,
		Priority:         priority,
		PeopleServed:     in.PeopleServed,
		Status:           models.RequestOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ngo models.User
		if err := tx.First(&ngo, ngoID).Error; err != nil {
			return wrapNotFound(err, "ngo", ngoID)
		}
		if err := tx.Create(&request).Error; err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return recordChange(tx, models.EntityRequest, request.ID, "", string(models.RequestOpen), "created", now)
	})
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("request created", "request_id", request.ID, "ngo_id", ngoID, "priority", priority)
	return s.FindByID(ctx, request.ID)
}

func (s *RequestService) MarkAsMatched(ctx context.Context, id uint) (*models.FoodRequest, error) {
	return s.transition(ctx, id, models.RequestMatched, "")
}

func (s *RequestService) MarkAsFulfilled(ctx context.Context, id uint) (*models.FoodRequest, error) {
	return s.transition(ctx, id, models.RequestFulfilled, "")
}

// Cancel withdraws an OPEN or MATCHED request.
func (s *RequestService) Cancel(ctx context.Context, id uint, reason string) (*models.FoodRequest, error) {
	return s.transition(ctx, id, models.RequestCancelled, reason)
}

func (s *RequestService) transition(ctx context.Context, id uint, to models.RequestStatus, note string) (*models.FoodRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := applyTransition(tx, statemachine.Requests, &models.FoodRequest{}, models.EntityRequest,
			id, to, nil, note, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(statemachine.Requests.Name(), string(to)).Inc()
	logger.WithCtx(ctx).Info("request status changed", "request_id", id, "status", to)
	return s.FindByID(ctx, id)
}

func (s *RequestService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.FoodRequest{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete request %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("request %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *RequestService) FindByID(ctx context.Context, id uint) (*models.FoodRequest, error) {
	var request models.FoodRequest
	if err := s.query(ctx).First(&request, id).Error; err != nil {
		return nil, wrapNotFound(err, "request", id)
	}
	return &request, nil
}

func (s *RequestService) History(ctx context.Context, id uint) ([]models.StatusChange, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history(ctx, models.EntityRequest, id)
}

func (s *RequestService) All(ctx context.Context) ([]models.FoodRequest, error) {
	var requests []models.FoodRequest
	err := s.query(ctx).Order("id").Find(&requests).Error
	return requests, err
}

// ByNgo lists an NGO's requests newest first.
func (s *RequestService) ByNgo(ctx context.Context, ngoID uint) ([]models.FoodRequest, error) {
	var requests []models.FoodRequest
	err := s.query(ctx).Where("ngo_id = ?", ngoID).Order("created_at DESC, id DESC").Find(&requests).Error
	return requests, err
}

func (s *RequestService) ByStatus(ctx context.Context, status models.RequestStatus) ([]models.FoodRequest, error) {
	var requests []models.FoodRequest
	err := s.query(ctx).Where("status = ?", status).Order("id").Find(&requests).Error
	return requests, err
}

func (s *RequestService) ByPriority(ctx context.Context, priority models.Priority) ([]models.FoodRequest, error) {
	var requests []models.FoodRequest
	err := s.query(ctx).Where("priority = ?", priority).Order("id").Find(&requests).Error
	return requests, err
}

// Active lists OPEN requests whose deadline is still ahead, most urgent
// priority first and earliest deadline first within a priority. Requests
// past their deadline stay OPEN; they just drop out of this list.
func (s *RequestService) Active(ctx context.Context) ([]models.FoodRequest, error) {
	var requests []models.FoodRequest
	err := s.query(ctx).
		Where("status = ? AND needed_by > ?", models.RequestOpen, s.now()).
		Order(priorityRank).
		Order("needed_by ASC").
		Order("id ASC").
		Find(&requests).Error
	return requests, err
}

type RequestFilter struct {
	Location string
	FoodType string
	Status   models.RequestStatus
}

func (s *RequestService) ByLocation(ctx context.Context, location string) ([]models.FoodRequest, error) {
	return s.Search(ctx, RequestFilter{Location: location})
}

func (s *RequestService) ByFoodType(ctx context.Context, foodType string) ([]models.FoodRequest, error) {
	return s.Search(ctx, RequestFilter{FoodType: foodType})
}

func (s *RequestService) Search(ctx context.Context, f RequestFilter) ([]models.FoodRequest, error) {
	q := s.query(ctx)
	if f.Location != "" {
		q = q.Where("LOWER(delivery_location) LIKE ? ESCAPE '!'", containsPattern(f.Location))
	}
	if f.FoodType != "" {
		q = q.Where("LOWER(food_type_needed) LIKE ? ESCAPE '!'", containsPattern(f.FoodType))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var requests []models.FoodRequest
	err := q.Order("id").Find(&requests).Error
	return requests, err
}
