package models

import "time"

// OrderStatus represents all possible states of a fulfillment order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderInTransit OrderStatus = "IN_TRANSIT"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order batches donation line items for delivery to one NGO.
type Order struct {
	ID                  uint        `json:"id" gorm:"primaryKey"`
	TrackingID          string      `json:"tracking_id" gorm:"size:40;uniqueIndex;not null"`
	NgoID               uint        `json:"ngo_id" gorm:"not null;index"`
	Ngo                 *User       `json:"ngo,omitempty" gorm:"foreignKey:NgoID"`
	DeliveryLocation    string      `json:"delivery_location" gorm:"type:text;not null"`
	DeliveryDate        time.Time   `json:"delivery_date" gorm:"not null"`
	DeliveryTime        string      `json:"delivery_time" gorm:"size:20;not null"`
	SpecialInstructions string      `json:"special_instructions" gorm:"type:text"`
	TrackingPayload     string      `json:"tracking_payload" gorm:"type:text"`
	Status              OrderStatus `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	Items               []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// OrderItem references one donation. RequestedQuantity may be less than the
// donation's quantity; nothing reconciles quantities across orders.
type OrderItem struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	OrderID           uint      `json:"order_id" gorm:"not null;index"`
	DonationID        uint      `json:"donation_id" gorm:"not null;index"`
	Donation          *Donation `json:"donation,omitempty" gorm:"foreignKey:DonationID"`
	RequestedQuantity float64   `json:"requested_quantity" gorm:"not null"`
	Unit              string    `json:"unit" gorm:"size:20;not null"`
	FoodType          string    `json:"food_type" gorm:"size:100"` // snapshot at time of order
}
