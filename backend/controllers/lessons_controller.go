package controllers

import (
	"context"
	"strings"

	"lessons/backend/errs"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/policy"
	"lessons/backend/store"
	"lessons/backend/toggle"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LessonsController struct {
	Lessons   *store.Lessons
	Reactions *toggle.Store
}

func NewLessonsController(lessons *store.Lessons, reactions *toggle.Store) *LessonsController {
	return &LessonsController{Lessons: lessons, Reactions: reactions}
}

// LessonView is a lesson as a given principal may see it. Locked lessons
// carry no content.
type LessonView struct {
	models.Lesson
	Locked bool `json:"locked"`
}

func viewOf(l models.Lesson, p *policy.Principal) LessonView {
	if !policy.CanReadContent(&l, p) {
		l.Content = ""
		return LessonView{Lesson: l, Locked: true}
	}
	return LessonView{Lesson: l}
}

func viewsOf(items []models.Lesson, p *policy.Principal) []LessonView {
	out := make([]LessonView, 0, len(items))
	for _, l := range items {
		out = append(out, viewOf(l, p))
	}
	return out
}

type LessonDetail struct {
	LessonView
	Stats StatsResponse `json:"stats"`
}

type StatsResponse struct {
	LessonID    uint  `json:"lessonId"`
	Likes       int64 `json:"likes"`
	Favorites   int64 `json:"favorites"`
	IsLiked     bool  `json:"isLiked"`
	IsFavorited bool  `json:"isFavorited"`
}

type CreateLessonRequest struct {
	Title         string `json:"title" validate:"required,max=200" example:"What losing a job taught me"`
	Description   string `json:"description" validate:"max=2000"`
	Content       string `json:"content" validate:"required"`
	Category      string `json:"category" validate:"required,max=50" example:"career"`
	EmotionalTone string `json:"emotionalTone" validate:"required,max=50" example:"hopeful"`
	Privacy       string `json:"privacy" validate:"omitempty,oneof=Public Private"`
	AccessLevel   string `json:"accessLevel" validate:"omitempty,oneof=free premium"`
	ImageURL      string `json:"imageURL" validate:"omitempty,url"`
}

type UpdateLessonRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	Content       *string `json:"content" validate:"omitempty,min=1"`
	Category      *string `json:"category" validate:"omitempty,min=1,max=50"`
	EmotionalTone *string `json:"emotionalTone" validate:"omitempty,min=1,max=50"`
	Privacy       *string `json:"privacy" validate:"omitempty,oneof=Public Private"`
	AccessLevel   *string `json:"accessLevel" validate:"omitempty,oneof=free premium"`
	ImageURL      *string `json:"imageURL" validate:"omitempty,url"`
}

func (r UpdateLessonRequest) updates() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("title", r.Title)
	set("description", r.Description)
	set("content", r.Content)
	set("category", r.Category)
	set("emotional_tone", r.EmotionalTone)
	set("privacy", r.Privacy)
	set("access_level", r.AccessLevel)
	set("image_url", r.ImageURL)
	return out
}

func listQuery(c *fiber.Ctx) (policy.ListQuery, error) {
	return policy.ParseListQuery(policy.RawListQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Tone:     c.Query("tone"),
		Sort:     c.Query("sort"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
	})
}

// GetLessons godoc
// @Summary List lessons
// @Description Lists lessons visible to the caller. Anonymous and free users only see Public lessons
// @Tags lessons
// @Produce json
// @Param search query string false "Title substring"
// @Param category query string false "Category"
// @Param tone query string false "Emotional tone"
// @Param sort query string false "newest or oldest"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, 1..100"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /lessons [get]
func (lc *LessonsController) GetLessons(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	p := middleware.Principal(c)

	items, total, err := lc.Lessons.List(c.UserContext(), policy.VisibilityFloor(p), q)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Paginate(c, viewsOf(items, p), total, q.Page, q.Limit)
}

// GetFeatured godoc
// @Summary Featured lessons
// @Description Featured lessons visible to the caller, with the same filters as the listing
// @Tags lessons
// @Produce json
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, 1..100"
// @Success 200 {array} LessonView
// @Router /lessons/featured [get]
func (lc *LessonsController) GetFeatured(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	p := middleware.Principal(c)

	featured, err := lc.Lessons.Featured(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	visible := policy.Filter(featured, p, q)
	start := min(q.Offset(), len(visible))
	end := min(start+q.Limit, len(visible))
	return utils.Success(c, fiber.StatusOK, viewsOf(visible[start:end], p))
}

// GetMine godoc
// @Summary My lessons
// @Description Every lesson the caller authored, private ones included
// @Tags lessons
// @Produce json
// @Success 200 {array} LessonView
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/mine [get]
func (lc *LessonsController) GetMine(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	items, err := lc.Lessons.ByOwner(c.UserContext(), p.Email)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, viewsOf(items, p))
}

// CreateLesson godoc
// @Summary Create lesson
// @Description Publishes a lesson owned by the caller. Premium lessons need a premium account
// @Tags lessons
// @Accept json
// @Produce json
// @Param input body CreateLessonRequest true "Lesson"
// @Success 201 {object} LessonView
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons [post]
func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	var input CreateLessonRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	if input.Privacy == "" {
		input.Privacy = models.PrivacyPublic
	}
	if input.AccessLevel == "" {
		input.AccessLevel = models.AccessFree
	}
	if !policy.CanCreateWithAccess(input.AccessLevel, p) {
		return utils.Fail(c, errs.Forbidden("only premium members can publish premium lessons"))
	}

	lesson := models.Lesson{
		OwnerEmail:    p.Email,
		OwnerName:     p.Name,
		OwnerPhotoURL: p.PhotoURL,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Content:       input.Content,
		Category:      strings.TrimSpace(input.Category),
		EmotionalTone: strings.TrimSpace(input.EmotionalTone),
		Privacy:       input.Privacy,
		AccessLevel:   input.AccessLevel,
		ImageURL:      input.ImageURL,
	}
	if err := lc.Lessons.Create(c.UserContext(), &lesson); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, viewOf(lesson, p))
}

// GetLessonDetails godoc
// @Summary Lesson details
// @Description One lesson with reaction counts. Premium content is withheld from free users
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} LessonDetail
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id} [get]
func (lc *LessonsController) GetLessonDetails(c *fiber.Ctx) error {
	lesson, p, err := lc.viewable(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	stats, err := lc.stats(c.UserContext(), lesson.ID, p)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, LessonDetail{LessonView: viewOf(*lesson, p), Stats: stats})
}

// UpdateLesson godoc
// @Summary Update lesson
// @Description Owner-only partial update
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body UpdateLessonRequest true "Changed fields"
// @Success 200 {object} LessonView
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [patch]
func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	p := middleware.Principal(c)
	lesson, err := lc.Lessons.Find(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := policy.RequireOwner(lesson.OwnerEmail)(p); err != nil {
		return utils.Fail(c, err)
	}

	var input UpdateLessonRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	if input.AccessLevel != nil && !policy.CanCreateWithAccess(*input.AccessLevel, p) {
		return utils.Fail(c, errs.Forbidden("only premium members can publish premium lessons"))
	}

	updated, err := lc.Lessons.Update(c.UserContext(), id, input.updates())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Lesson updated", viewOf(*updated, p))
}

// DeleteLesson godoc
// @Summary Delete lesson
// @Description Removes a lesson with its reactions, reports and comments. Owner or admin
// @Tags lessons
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [delete]
func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	lesson, err := lc.Lessons.Find(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := policy.RequireOwnerOrAdmin(lesson.OwnerEmail)(middleware.Principal(c)); err != nil {
		return utils.Fail(c, err)
	}
	if err := lc.Lessons.Delete(c.UserContext(), id); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Lesson deleted", fiber.Map{"id": id})
}

func (lc *LessonsController) stats(ctx context.Context, lessonID uint, p *policy.Principal) (StatsResponse, error) {
	var (
		out = StatsResponse{LessonID: lessonID}
		err error
	)
	if out.Likes, err = lc.Reactions.Count(ctx, models.ReactionLike, lessonID); err != nil {
		return out, err
	}
	if out.Favorites, err = lc.Reactions.Count(ctx, models.ReactionFavorite, lessonID); err != nil {
		return out, err
	}
	if p == nil {
		return out, nil
	}
	if out.IsLiked, err = lc.Reactions.Has(ctx, toggle.Key{Kind: models.ReactionLike, LessonID: lessonID, Email: p.Email}); err != nil {
		return out, err
	}
	out.IsFavorited, err = lc.Reactions.Has(ctx, toggle.Key{Kind: models.ReactionFavorite, LessonID: lessonID, Email: p.Email})
	return out, err
}

// viewable loads the :id lesson and applies CanView for the caller.
func (lc *LessonsController) viewable(c *fiber.Ctx) (*models.Lesson, *policy.Principal, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	lesson, err := lc.Lessons.Find(c.UserContext(), id)
	if err != nil {
		return nil, nil, err
	}
	p := middleware.Principal(c)
	if !policy.CanView(lesson, p) {
		return nil, nil, errs.Forbidden("this lesson is available to premium members only")
	}
	return lesson, p, nil
}
