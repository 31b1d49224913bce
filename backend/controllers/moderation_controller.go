package controllers

import (
	"lessons/backend/metrics"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/moderation"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ModerationController struct {
	Moderation *moderation.Service
	Metrics    *metrics.Metrics
}

func NewModerationController(svc *moderation.Service, m *metrics.Metrics) *ModerationController {
	return &ModerationController{Moderation: svc, Metrics: m}
}

type ReportRequest struct {
	Reason string `json:"reason" validate:"required,max=500" example:"Contains personal attacks"`
}

// ReportLesson godoc
// @Summary Report a lesson
// @Description Flags the lesson and files a pending report
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body ReportRequest true "Reason"
// @Success 201 {object} models.Report
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/report [post]
func (mc *ModerationController) ReportLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var input ReportRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}

	report, err := mc.Moderation.Report(c.UserContext(), middleware.Principal(c), id, input.Reason)
	if err != nil {
		return utils.Fail(c, err)
	}
	mc.Metrics.Report()
	return utils.Created(c, report)
}

// GetFlagged godoc
// @Summary Flagged lessons
// @Description Reports grouped per lesson, most reported first
// @Tags admin
// @Produce json
// @Success 200 {array} models.FlaggedLesson
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/reports/flagged [get]
func (mc *ModerationController) GetFlagged(c *fiber.Ctx) error {
	flagged, err := mc.Moderation.FlaggedLessons(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, flagged)
}

// GetLessonReports godoc
// @Summary Reports of one lesson
// @Tags admin
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {array} models.Report
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/reports [get]
func (mc *ModerationController) GetLessonReports(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	reports, err := mc.Moderation.ReportsForLesson(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return utils.Success(c, fiber.StatusOK, reports)
}

// DismissReports godoc
// @Summary Dismiss reports
// @Description Deletes every report of a lesson. The lesson stays flagged
// @Tags admin
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/reports [delete]
func (mc *ModerationController) DismissReports(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	n, err := mc.Moderation.DismissReports(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Reports dismissed", fiber.Map{"lessonId": id, "deleted": n})
}

// ReviewReport godoc
// @Summary Review a report
// @Description Moves one report from pending to reviewed
// @Tags admin
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/reports/{id}/review [patch]
func (mc *ModerationController) ReviewReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	report, err := mc.Moderation.Review(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Report reviewed", report)
}

// ReviewLessonReports godoc
// @Summary Review all reports of a lesson
// @Tags admin
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/reports/review [patch]
func (mc *ModerationController) ReviewLessonReports(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	n, err := mc.Moderation.ReviewAllForLesson(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Reports reviewed", fiber.Map{"lessonId": id, "reviewed": n})
}
