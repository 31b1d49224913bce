package controllers

import (
	"strconv"
	"time"

	"lessons/backend/errs"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/store"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const adminUsersPageSize = 20

type AdminController struct {
	Users   *store.Users
	Lessons *store.Lessons
	Log     *utils.Logger
}

func NewAdminController(users *store.Users, lessons *store.Lessons, log *utils.Logger) *AdminController {
	return &AdminController{Users: users, Lessons: lessons, Log: log}
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin" example:"admin"`
}

type PremiumRequest struct {
	IsPremium *bool `json:"isPremium" validate:"required"`
}

type FeaturedRequest struct {
	IsFeatured *bool `json:"isFeatured" validate:"required"`
}

type PrivacyRequest struct {
	Privacy string `json:"privacy" validate:"required,oneof=Public Private" example:"Private"`
}

// GetUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param page query int false "Page, from 1"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return utils.ValidationError(c, "invalid query", map[string]string{"page": "must be a positive integer"})
	}
	users, total, err := ac.Users.List(c.UserContext(), (page-1)*adminUsersPageSize, adminUsersPageSize)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Paginate(c, users, total, page, adminUsersPageSize)
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body RoleRequest true "Role"
// @Success 200 {object} models.User
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/role [patch]
func (ac *AdminController) UpdateUserRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var input RoleRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	p := middleware.Principal(c)
	if p.ID == id && input.Role != models.RoleAdmin {
		return utils.Fail(c, errs.Conflict("admins cannot demote themselves"))
	}

	user, err := ac.Users.SetRole(c.UserContext(), id, input.Role)
	if err != nil {
		return utils.Fail(c, err)
	}
	ac.Log.Info("role changed", "user", user.Email, "role", user.Role, "by", p.Email)
	return utils.Message(c, "Role updated", user)
}

// UpdateUserPremium godoc
// @Summary Grant or revoke premium
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body PremiumRequest true "Premium flag"
// @Success 200 {object} models.User
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/premium [patch]
func (ac *AdminController) UpdateUserPremium(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var input PremiumRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	user, err := ac.Users.SetPremium(c.UserContext(), id, *input.IsPremium, time.Now().UTC())
	if err != nil {
		return utils.Fail(c, err)
	}
	ac.Log.Info("premium changed", "user", user.Email, "premium", user.IsPremium, "by", middleware.Principal(c).Email)
	return utils.Message(c, "Premium updated", user)
}

// SetFeatured godoc
// @Summary Feature or unfeature a lesson
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body FeaturedRequest true "Featured flag"
// @Success 200 {object} models.Lesson
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/featured [patch]
func (ac *AdminController) SetFeatured(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var input FeaturedRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	lesson, err := ac.Lessons.SetFeatured(c.UserContext(), id, *input.IsFeatured)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Lesson updated", lesson)
}

// SetPrivacy godoc
// @Summary Override a lesson's privacy
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body PrivacyRequest true "Privacy"
// @Success 200 {object} models.Lesson
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/privacy [patch]
func (ac *AdminController) SetPrivacy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var input PrivacyRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	lesson, err := ac.Lessons.SetPrivacy(c.UserContext(), id, input.Privacy)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Lesson updated", lesson)
}
