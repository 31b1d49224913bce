package models

import "time"

const PlanPremium = "premium"

// Payment is written at most once per external transaction id.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transactionId"`
	SessionID     string    `gorm:"index" json:"sessionId"`
	Email         string    `gorm:"index;not null" json:"email"`
	Plan          string    `gorm:"not null" json:"plan"`
	Amount        int64     `json:"amount"` // minor units
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
}
