package store

import (
	"context"
	"fmt"

	"lessons/backend/models"

	"gorm.io/gorm"
)

type Comments struct {
	db *gorm.DB
}

func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

func (r *Comments) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListForLesson returns comments oldest first, the way a thread reads.
func (r *Comments) ListForLesson(ctx context.Context, lessonID uint) ([]models.Comment, error) {
	var out []models.Comment
	err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Order("created_at ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of lesson %d: %w", lessonID, err)
	}
	return out, nil
}
