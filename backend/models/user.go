package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	Name               string     `json:"name"`
	PhotoURL           string     `json:"photoURL"`
	PasswordHash       string     `json:"-"`
	Role               string     `gorm:"not null;default:user" json:"role"` // user, admin
	IsPremium          bool       `gorm:"not null" json:"isPremium"`
	PremiumPlan        string     `json:"premiumPlan,omitempty"`
	PremiumActivatedAt *time.Time `json:"premiumActivatedAt,omitempty"`
	LastLogin          time.Time  `json:"lastLogin"`
}
