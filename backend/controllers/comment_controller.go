package controllers

import (
	"strings"

	"lessons/backend/models"
	"lessons/backend/store"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CommentsController struct {
	*LessonsController
	Comments *store.Comments
}

func NewCommentsController(lessons *LessonsController, comments *store.Comments) *CommentsController {
	return &CommentsController{LessonsController: lessons, Comments: comments}
}

// AddCommentRequest defines the request body for adding a comment
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000" example:"This one stayed with me."`
}

// AddLessonComment godoc
// @Summary Add comment to lesson
// @Description Adds a comment to a lesson the caller can view
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body AddCommentRequest true "Comment data"
// @Success 201 {object} models.Comment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/comments [post]
func (cc *CommentsController) AddLessonComment(c *fiber.Ctx) error {
	lesson, p, err := cc.viewable(c)
	if err != nil {
		return utils.Fail(c, err)
	}

	var input AddCommentRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return utils.ValidationError(c, "invalid request body", map[string]string{"text": "required"})
	}

	comment := models.Comment{
		LessonID:  lesson.ID,
		UserEmail: p.Email,
		UserName:  p.Name,
		UserPhoto: p.PhotoURL,
		Text:      text,
	}
	if err := cc.Comments.Create(c.UserContext(), &comment); err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, comment)
}

// GetLessonComments godoc
// @Summary Get lesson comments
// @Description Returns all comments for a lesson, oldest first
// @Tags comments
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {array} models.Comment
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id}/comments [get]
func (cc *CommentsController) GetLessonComments(c *fiber.Ctx) error {
	lesson, _, err := cc.viewable(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	comments, err := cc.Comments.ListForLesson(c.UserContext(), lesson.ID)
	if err != nil {
		return utils.Fail(c, err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return utils.Success(c, fiber.StatusOK, comments)
}
