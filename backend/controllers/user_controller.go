package controllers

import (
	"strings"

	"lessons/backend/errs"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/store"
	"lessons/backend/toggle"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Users     *store.Users
	Lessons   *store.Lessons
	Favorites *toggle.Store
}

func NewUserController(users *store.Users, lessons *store.Lessons, favorites *toggle.Store) *UserController {
	return &UserController{Users: users, Lessons: lessons, Favorites: favorites}
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100" example:"Ann"`
	PhotoURL *string `json:"photoURL" validate:"omitempty,url"`
}

type ProfileResponse struct {
	User           *models.User `json:"user"`
	LessonsCreated int          `json:"lessonsCreated"`
	Favorites      int          `json:"favorites"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if p.ID == 0 {
		return utils.Fail(c, errs.NotFound("User not found"))
	}
	user, err := uc.Users.FindByID(c.UserContext(), p.ID)
	if err != nil {
		return utils.Fail(c, err)
	}

	lessons, err := uc.Lessons.ByOwner(c.UserContext(), user.Email)
	if err != nil {
		return utils.Fail(c, err)
	}
	favorites, err := uc.Favorites.ListByUser(c.UserContext(), models.ReactionFavorite, user.Email, toggle.ListFilter{})
	if err != nil {
		return utils.Fail(c, err)
	}

	return utils.Success(c, fiber.StatusOK, ProfileResponse{
		User:           user,
		LessonsCreated: len(lessons),
		Favorites:      len(favorites),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes the display name and photo of the caller
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [patch]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if p.ID == 0 {
		return utils.Fail(c, errs.NotFound("User not found"))
	}
	var input UpdateUserRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}

	user, err := uc.Users.UpdateProfile(c.UserContext(), p.ID, input.Name, input.PhotoURL)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Message(c, "Profile updated", user)
}
