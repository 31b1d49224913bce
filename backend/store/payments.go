package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lessons/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Payments struct {
	db *gorm.DB
}

func NewPayments(db *gorm.DB) *Payments {
	return &Payments{db: db}
}

// InsertIfAbsent relies on the unique transaction_id index; a replay inserts
// nothing and is not an error.
func (r *Payments) InsertIfAbsent(ctx context.Context, rec *models.Payment) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ActivatePremium grants premium to email, creating the account when the
// buyer paid before their first sign-in sync.
func (r *Payments) ActivatePremium(ctx context.Context, email, plan string, at time.Time) error {
	user := models.User{
		Email:              strings.ToLower(email),
		Role:               models.RoleUser,
		IsPremium:          true,
		PremiumPlan:        plan,
		PremiumActivatedAt: &at,
		LastLogin:          at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_premium":           true,
			"premium_plan":         plan,
			"premium_activated_at": at,
			"updated_at":           at,
		}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("activate premium for %s: %w", email, err)
	}
	return nil
}

func (r *Payments) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at DESC, id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list payments of %s: %w", email, err)
	}
	return out, nil
}

func (r *Payments) ListAll(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
