package models

import "time"

// DonationStatus represents the lifecycle states of a donation
type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationAccepted  DonationStatus = "ACCEPTED"
	DonationPickedUp  DonationStatus = "PICKED_UP"
	DonationDelivered DonationStatus = "DELIVERED"
)

// Donation is one donor-supplied lot of surplus food.
type Donation struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	DonorID             uint           `json:"donor_id" gorm:"not null;index"`
	Donor               *User          `json:"donor,omitempty" gorm:"foreignKey:DonorID"`
	FoodType            string         `json:"food_type" gorm:"size:100;not null;index"`
	Quantity            float64        `json:"quantity" gorm:"not null"`
	Unit                string         `json:"unit" gorm:"size:20"`
	ExpiryTime          *time.Time     `json:"expiry_time"`
	PickupLocation      string         `json:"pickup_location" gorm:"size:255;not null"`
	Description         string         `json:"description" gorm:"size:500"`
	Status              DonationStatus `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	AssignedNgoID       *uint          `json:"assigned_ngo_id" gorm:"index"`
	AssignedNgo         *User          `json:"assigned_ngo,omitempty" gorm:"foreignKey:AssignedNgoID"`
	AssignedVolunteerID *uint          `json:"assigned_volunteer_id" gorm:"index"`
	AssignedVolunteer   *User          `json:"assigned_volunteer,omitempty" gorm:"foreignKey:AssignedVolunteerID"`
	PickupTime          *time.Time     `json:"pickup_time"`
	DeliveredTime       *time.Time     `json:"delivered_time"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
