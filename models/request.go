package models

import "time"

// RequestStatus represents the lifecycle states of an NGO food request
type RequestStatus string

const (
	RequestOpen      RequestStatus = "OPEN"
	RequestMatched   RequestStatus = "MATCHED"
	RequestFulfilled RequestStatus = "FULFILLED"
	RequestCancelled RequestStatus = "CANCELLED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// FoodRequest is an NGO's stated need.
type FoodRequest struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	NgoID            uint          `json:"ngo_id" gorm:"not null;index"`
	Ngo              *User         `json:"ngo,omitempty" gorm:"foreignKey:NgoID"`
	FoodTypeNeeded   string        `json:"food_type_needed" gorm:"size:100;not null"`
	QuantityNeeded   float64       `json:"quantity_needed" gorm:"not null"`
	Unit             string        `json:"unit" gorm:"size:20"`
	DeliveryLocation string        `json:"delivery_location" gorm:"size:255;not null"`
	Description      string        `json:"description" gorm:"size:500"`
	NeededBy         *time.Time    `json:"needed_by"`
	Priority         Priority      `json:"priority" gorm:"size:10;not null;default:'MEDIUM'"`
	PeopleServed     int           `json:"people_served"`
	Status           RequestStatus `json:"status" gorm:"size:20;not null;default:'OPEN';index"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName keeps the table name stable regardless of gorm's pluralizer.
func (FoodRequest) TableName() string { return "food_requests" }
