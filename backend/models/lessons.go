package models

import "time"

const (
	PrivacyPublic  = "Public"
	PrivacyPrivate = "Private"

	AccessFree    = "free"
	AccessPremium = "premium"
)

type Lesson struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerEmail    string    `gorm:"index;not null" json:"ownerEmail"`
	OwnerName     string    `json:"ownerName"`
	OwnerPhotoURL string    `json:"ownerPhotoURL,omitempty"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	Content       string    `gorm:"type:text" json:"content,omitempty"`
	Category      string    `gorm:"index" json:"category"`
	EmotionalTone string    `gorm:"index" json:"emotionalTone"`
	Privacy       string    `gorm:"not null;default:Public" json:"privacy"`   // Public, Private
	AccessLevel   string    `gorm:"not null;default:free" json:"accessLevel"` // free, premium
	ImageURL      string    `json:"imageURL,omitempty"`
	IsFeatured    bool      `gorm:"not null" json:"isFeatured"`
	IsFlagged     bool      `gorm:"not null" json:"isFlagged"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	LastUpdated   time.Time `gorm:"autoUpdateTime" json:"lastUpdated"`
}
