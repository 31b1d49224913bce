package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/policy"

	"gorm.io/gorm"
)

type Lessons struct {
	db *gorm.DB
}

func NewLessons(db *gorm.DB) *Lessons {
	return &Lessons{db: db}
}

func (r *Lessons) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (r *Lessons) Find(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, notFound(err, "lesson")
	}
	return &lesson, nil
}

// List is the SQL form of policy.Filter plus pagination. publicOnly carries
// the visibility floor of the caller.
func (r *Lessons) List(ctx context.Context, publicOnly bool, q policy.ListQuery) ([]models.Lesson, int64, error) {
	scope := listScope(publicOnly, q)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Lesson{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	order := "created_at DESC, id DESC"
	if q.Sort == policy.SortOldest {
		order = "created_at ASC, id ASC"
	}
	var items []models.Lesson
	err := r.db.WithContext(ctx).Scopes(scope).Order(order).Offset(q.Offset()).Limit(q.Limit).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}
	return items, total, nil
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listScope(publicOnly bool, q policy.ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if publicOnly {
			db = db.Where("privacy = ?", models.PrivacyPublic)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.Tone != "" {
			db = db.Where("emotional_tone = ?", q.Tone)
		}
		if q.Search != "" {
			db = db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(q.Search))+"%")
		}
		return db
	}
}

// Featured returns every featured lesson regardless of privacy. Callers
// filter by visibility.
func (r *Lessons) Featured(ctx context.Context) ([]models.Lesson, error) {
	var items []models.Lesson
	err := r.db.WithContext(ctx).Where("is_featured = ?", true).Order("created_at DESC, id DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list featured lessons: %w", err)
	}
	return items, nil
}

func (r *Lessons) ByOwner(ctx context.Context, email string) ([]models.Lesson, error) {
	var items []models.Lesson
	err := r.db.WithContext(ctx).Where("owner_email = ?", email).Order("created_at DESC, id DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", email, err)
	}
	return items, nil
}

// Update applies column updates and returns the fresh row.
func (r *Lessons) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Lesson, error) {
	if len(updates) > 0 {
		updates["last_updated"] = time.Now().UTC()
		res := r.db.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update lesson %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, errs.NotFound("lesson not found")
		}
	}
	return r.Find(ctx, id)
}

func (r *Lessons) SetFeatured(ctx context.Context, id uint, featured bool) (*models.Lesson, error) {
	return r.Update(ctx, id, map[string]interface{}{"is_featured": featured})
}

func (r *Lessons) SetPrivacy(ctx context.Context, id uint, privacy string) (*models.Lesson, error) {
	return r.Update(ctx, id, map[string]interface{}{"privacy": privacy})
}

// Delete removes the lesson with its reactions, reports and comments.
func (r *Lessons) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Lesson{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete lesson %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("lesson not found")
		}
		if err := tx.Where("lesson_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return fmt.Errorf("delete reactions of lesson %d: %w", id, err)
		}
		if err := tx.Where("lesson_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return fmt.Errorf("delete reports of lesson %d: %w", id, err)
		}
		if err := tx.Unscoped().Where("lesson_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of lesson %d: %w", id, err)
		}
		return nil
	})
}
