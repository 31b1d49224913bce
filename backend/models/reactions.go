package models

import "time"

const (
	ReactionFavorite = "favorite"
	ReactionLike     = "like"
)

// Reaction is a per-(kind, lesson, user) membership fact. The composite
// unique index is the only uniqueness constraint the toggle logic relies on.
type Reaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Kind          string    `gorm:"size:16;not null;uniqueIndex:idx_reaction_key" json:"kind"`
	LessonID      uint      `gorm:"not null;uniqueIndex:idx_reaction_key" json:"lessonId"`
	UserEmail     string    `gorm:"not null;uniqueIndex:idx_reaction_key;index" json:"userEmail"`
	LessonTitle   string    `json:"lessonTitle"`
	Category      string    `json:"category"`
	EmotionalTone string    `json:"emotionalTone"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ValidReactionKind(kind string) bool {
	return kind == ReactionFavorite || kind == ReactionLike
}
