package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *Users) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// Create inserts a new account. A taken email is a conflict.
func (r *Users) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if isDuplicateKey(err) {
		return errs.Conflict("email is already registered")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Upsert creates the user on first sight and otherwise only refreshes
// last_login. Role and premium are never touched here.
func (r *Users) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(user.Email)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.LastLogin.IsZero() {
		user.LastLogin = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_login", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", user.Email, err)
	}
	return r.FindByEmail(ctx, user.Email)
}

func (r *Users) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// UpdateProfile changes the self-editable fields only.
func (r *Users) UpdateProfile(ctx context.Context, id uint, name, photoURL *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if photoURL != nil {
		updates["photo_url"] = *photoURL
	}
	if len(updates) > 0 {
		if err := r.update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *Users) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *Users) SetRole(ctx context.Context, id uint, role string) (*models.User, error) {
	if err := r.update(ctx, id, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// SetPremium is the admin override. Revoking keeps the plan history fields.
func (r *Users) SetPremium(ctx context.Context, id uint, premium bool, at time.Time) (*models.User, error) {
	updates := map[string]interface{}{"is_premium": premium}
	if premium {
		updates["premium_activated_at"] = at
	}
	if err := r.update(ctx, id, updates); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Users) update(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}
