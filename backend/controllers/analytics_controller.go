package controllers

import (
	"lessons/backend/store"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Analytics *store.Analytics
}

func NewAnalyticsController(analytics *store.Analytics) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics}
}

// GetPlatformAnalytics возвращает сводную статистику платформы
// @Summary Platform analytics
// @Description Users, lessons, moderation queue, reactions and revenue at a glance
// @Tags admin
// @Produce json
// @Success 200 {object} models.PlatformAnalytics
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/analytics [get]
func (ac *AnalyticsController) GetPlatformAnalytics(c *fiber.Ctx) error {
	stats, err := ac.Analytics.Platform(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}
