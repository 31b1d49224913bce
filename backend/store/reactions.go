package store

import (
	"context"
	"fmt"

	"lessons/backend/models"
	"lessons/backend/toggle"

	"gorm.io/gorm"
)

// Reactions backs toggle.Store. The composite unique index on
// (kind, lesson_id, user_email) is what makes Insert race-safe.
type Reactions struct {
	db *gorm.DB
}

func NewReactions(db *gorm.DB) *Reactions {
	return &Reactions{db: db}
}

func (r *Reactions) DeleteByKey(ctx context.Context, key toggle.Key) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("kind = ? AND lesson_id = ? AND user_email = ?", key.Kind, key.LessonID, key.Email).
		Delete(&models.Reaction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Reactions) Insert(ctx context.Context, rel *models.Reaction) error {
	err := r.db.WithContext(ctx).Create(rel).Error
	if isDuplicateKey(err) {
		return toggle.ErrDuplicate
	}
	return err
}

func (r *Reactions) Exists(ctx context.Context, key toggle.Key) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("kind = ? AND lesson_id = ? AND user_email = ?", key.Kind, key.LessonID, key.Email).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s relation: %w", key.Kind, err)
	}
	return n > 0, nil
}

func (r *Reactions) Count(ctx context.Context, kind string, lessonID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("kind = ? AND lesson_id = ?", kind, lessonID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %s relations: %w", kind, err)
	}
	return n, nil
}

func (r *Reactions) ListByUser(ctx context.Context, kind, email string, filter toggle.ListFilter) ([]models.Reaction, error) {
	q := r.db.WithContext(ctx).Where("kind = ? AND user_email = ?", kind, email)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Tone != "" {
		q = q.Where("emotional_tone = ?", filter.Tone)
	}
	var out []models.Reaction
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s relations of %s: %w", kind, email, err)
	}
	return out, nil
}
