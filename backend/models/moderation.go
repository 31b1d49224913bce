package models

import "time"

const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
)

type Report struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	LessonID      uint       `gorm:"index;not null" json:"lessonId"`
	ReporterEmail string     `gorm:"not null" json:"reporterEmail"`
	Reason        string     `gorm:"not null" json:"reason"`
	Status        string     `gorm:"not null;default:pending;index" json:"status"` // pending, reviewed
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// FlaggedLesson is the read-only projection of reports grouped per lesson.
type FlaggedLesson struct {
	LessonID     uint      `json:"lessonId"`
	Title        string    `json:"title"`
	OwnerEmail   string    `json:"ownerEmail"`
	Category     string    `json:"category"`
	ReportCount  int64     `json:"reportCount"`
	PendingCount int64     `json:"pendingCount"`
	LatestReport time.Time `json:"latestReport"`
}
