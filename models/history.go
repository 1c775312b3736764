package models

import "time"

// EntityKind names the record a StatusChange belongs to.
type EntityKind string

const (
	EntityDonation EntityKind = "donation"
	EntityRequest  EntityKind = "request"
	EntityOrder    EntityKind = "order"
)

// StatusChange is one row of the audit trail written by every lifecycle
// transition.
type StatusChange struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	EntityKind EntityKind `json:"entity_kind" gorm:"size:20;not null;index:idx_status_change_entity"`
	EntityID   uint       `json:"entity_id" gorm:"not null;index:idx_status_change_entity"`
	FromStatus string     `json:"from_status" gorm:"size:20"`
	ToStatus   string     `json:"to_status" gorm:"size:20;not null"`
	Note       string     `json:"note" gorm:"size:255"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PointAward is an append-only ledger entry; users.points is the running sum.
type PointAward struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Delta      int       `json:"delta" gorm:"not null"`
	Reason     string    `json:"reason" gorm:"size:50;not null"`
	DonationID *uint     `json:"donation_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Donation{},
		&FoodRequest{},
		&Order{},
		&OrderItem{},
		&StatusChange{},
		&PointAward{},
	}
}
