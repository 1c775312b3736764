package models

import (
	"time"
)

// Role defines allowed roles in the system
type Role string

const (
	RoleDonor     Role = "DONOR"
	RoleNGO       Role = "NGO"
	RoleVolunteer Role = "VOLUNTEER"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin}

// User is an actor: donor, NGO, volunteer or admin. Role never changes after
// registration and Points only ever grows.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:120;not null"`
	Phone        string    `json:"phone" gorm:"size:15"`
	Address      string    `json:"address" gorm:"size:255"`
	Role         Role      `json:"role" gorm:"size:20;not null;index"`
	Enabled      bool      `json:"enabled" gorm:"not null;default:true"`
	Points       int       `json:"points" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
