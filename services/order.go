package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-rescue-api/logger"
	"food-rescue-api/metrics"
	"food-rescue-api/models"
	"food-rescue-api/statemachine"

	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// QRCodeSize is the edge length in pixels of rendered tracking codes.
const QRCodeSize = 256

// OrderItemInput names one donation. A zero or unknown DonationID drops the
// line instead of failing the order.
type OrderItemInput struct {
	DonationID        uint    `json:"donation_id"`
	RequestedQuantity float64 `json:"requested_quantity" validate:"gt=0"`
}

type DeliveryDetails struct {
	DeliveryLocation    string `json:"delivery_location" validate:"required"`
	DeliveryDate        string `json:"delivery_date" validate:"required"`
	DeliveryTime        string `json:"delivery_time" validate:"required"`
	SpecialInstructions string `json:"special_instructions"`
}

// trackingPayload is the document encoded into an order's QR code. It is
// display data only and cannot be verified.
type trackingPayload struct {
	OrderID          string `json:"orderId"`
	DeliveryLocation string `json:"deliveryLocation"`
	DeliveryDate     string `json:"deliveryDate"`
	DeliveryTime     string `json:"deliveryTime"`
	Items            int    `json:"items"`
	Timestamp        string `json:"timestamp"`
}

type OrderService struct {
	*env
}

func (s *OrderService) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Ngo").Preload("Items")
}

// CreateOrder batches donations for delivery to an NGO. Items whose donation
// does not exist are skipped; the order is still created with the rest.
func (s *OrderService) CreateOrder(ctx context.Context, ngoID uint, items []OrderItemInput, details DeliveryDetails) (*models.Order, error) {
	if err := check(details); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := check(item); err != nil {
			return nil, err
		}
	}

	db := s.db.WithContext(ctx)
	if _, err := findWithRole(db, ngoID, models.RoleNGO); err != nil {
		return nil, err
	}
	deliveryAt, err := models.ParseDeliveryDateTime(details.DeliveryDate, details.DeliveryTime)
	if err != nil {
		return nil, err
	}

	log := logger.WithCtx(ctx)
	now := s.now()
	order := models.Order{
		TrackingID:          fmt.Sprintf("ORD-%d", now.UnixMilli()),
		NgoID:               ngoID,
		DeliveryLocation:    details.DeliveryLocation,
		DeliveryDate:        deliveryAt,
		DeliveryTime:        details.DeliveryTime,
		SpecialInstructions: details.SpecialInstructions,
		Status:              models.OrderPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	skipped := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, in := range items {
			var donation models.Donation
			err := gorm.ErrRecordNotFound
			if in.DonationID != 0 {
				err = tx.First(&donation, in.DonationID).Error
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("order item skipped", "tracking_id", order.TrackingID, "donation_id", in.DonationID)
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("load donation %d: %w", in.DonationID, err)
			}
			item := models.OrderItem{
				OrderID:           order.ID,
				DonationID:        donation.ID,
				RequestedQuantity: in.RequestedQuantity,
				Unit:              donation.Unit,
				FoodType:          donation.FoodType,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}

		payload, err := json.Marshal(trackingPayload{
			OrderID:          order.TrackingID,
			DeliveryLocation: order.DeliveryLocation,
			DeliveryDate:     details.DeliveryDate,
			DeliveryTime:     details.DeliveryTime,
			Items:            len(order.Items),
			Timestamp:        models.FormatLocal(now),
		})
		if err != nil {
			return fmt.Errorf("encode tracking payload: %w", err)
		}
		order.TrackingPayload = string(payload)
		if err := tx.Model(&order).UpdateColumn("tracking_payload", order.TrackingPayload).Error; err != nil {
			return fmt.Errorf("store tracking payload: %w", err)
		}
		return recordChange(tx, models.EntityOrder, order.ID, "", string(models.OrderPending), "created", now)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	metrics.OrderItemsSkipped.Add(float64(skipped))
	log.Info("order created", "tracking_id", order.TrackingID, "ngo_id", ngoID,
		"items", len(order.Items), "skipped", skipped)
	return s.FindByTrackingID(ctx, order.TrackingID)
}

// UpdateStatus moves an order along its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, trackingID string, to models.OrderStatus, note string) (*models.Order, error) {
	order, err := s.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := applyTransition(tx, statemachine.Orders, &models.Order{}, models.EntityOrder,
			order.ID, to, nil, note, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(statemachine.Orders.Name(), string(to)).Inc()
	logger.WithCtx(ctx).Info("order status changed", "tracking_id", trackingID, "status", to)
	return s.FindByTrackingID(ctx, trackingID)
}

func (s *OrderService) FindByTrackingID(ctx context.Context, trackingID string) (*models.Order, error) {
	var order models.Order
	if err := s.query(ctx).Where("tracking_id = ?", trackingID).First(&order).Error; err != nil {
		return nil, wrapNotFound(err, "order", trackingID)
	}
	return &order, nil
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.query(ctx).Order("id").Find(&orders).Error
	return orders, err
}

// ByNgo lists an NGO's orders newest first.
func (s *OrderService) ByNgo(ctx context.Context, ngoID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.query(ctx).Where("ngo_id = ?", ngoID).Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (s *OrderService) ByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := s.query(ctx).Where("status = ?", status).Order("id").Find(&orders).Error
	return orders, err
}

func (s *OrderService) History(ctx context.Context, trackingID string) ([]models.StatusChange, error) {
	order, err := s.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, models.EntityOrder, order.ID)
}

// QRCode renders the order's tracking payload as a PNG.
func (s *OrderService) QRCode(ctx context.Context, trackingID string) ([]byte, error) {
	order, err := s.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(order.TrackingPayload, qrcode.Medium, QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code for %s: %w", trackingID, err)
	}
	return png, nil
}
