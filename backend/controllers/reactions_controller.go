package controllers

import (
	"lessons/backend/metrics"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/toggle"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ReactionsController struct {
	*LessonsController
	Metrics *metrics.Metrics
}

func NewReactionsController(lessons *LessonsController, m *metrics.Metrics) *ReactionsController {
	return &ReactionsController{LessonsController: lessons, Metrics: m}
}

type ToggleResponse struct {
	Action toggle.Action `json:"action"`
	Count  int64         `json:"count"`
}

// ToggleFavorite godoc
// @Summary Favorite or unfavorite a lesson
// @Tags reactions
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} ToggleResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/favorite [post]
func (rc *ReactionsController) ToggleFavorite(c *fiber.Ctx) error {
	return rc.toggle(c, models.ReactionFavorite)
}

// ToggleLike godoc
// @Summary Like or unlike a lesson
// @Tags reactions
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} ToggleResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/like [post]
func (rc *ReactionsController) ToggleLike(c *fiber.Ctx) error {
	return rc.toggle(c, models.ReactionLike)
}

func (rc *ReactionsController) toggle(c *fiber.Ctx, kind string) error {
	lesson, p, err := rc.viewable(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	ctx := c.UserContext()

	action, err := rc.Reactions.Toggle(ctx,
		toggle.Key{Kind: kind, LessonID: lesson.ID, Email: p.Email},
		toggle.Payload{LessonTitle: lesson.Title, Category: lesson.Category, EmotionalTone: lesson.EmotionalTone},
	)
	if err != nil {
		return utils.Fail(c, err)
	}
	rc.Metrics.Toggle(kind, string(action))

	count, err := rc.Reactions.Count(ctx, kind, lesson.ID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, ToggleResponse{Action: action, Count: count})
}

// GetStats godoc
// @Summary Reaction counts of a lesson
// @Tags reactions
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} StatsResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id}/stats [get]
func (rc *ReactionsController) GetStats(c *fiber.Ctx) error {
	lesson, p, err := rc.viewable(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	stats, err := rc.stats(c.UserContext(), lesson.ID, p)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// GetFavorites godoc
// @Summary My favorites
// @Tags reactions
// @Produce json
// @Param category query string false "Category"
// @Param tone query string false "Emotional tone"
// @Success 200 {array} models.Reaction
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /favorites [get]
func (rc *ReactionsController) GetFavorites(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	items, err := rc.Reactions.ListByUser(c.UserContext(), models.ReactionFavorite, p.Email, toggle.ListFilter{
		Category: c.Query("category"),
		Tone:     c.Query("tone"),
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	if items == nil {
		items = []models.Reaction{}
	}
	return utils.Success(c, fiber.StatusOK, items)
}
