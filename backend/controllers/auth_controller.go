package controllers

import (
	"errors"
	"strings"
	"time"

	"lessons/backend/config"
	"lessons/backend/errs"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/store"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	Users *store.Users
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(users *store.Users, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Users: users, Cfg: cfg, Log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ann@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100" example:"Ann"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SyncUserRequest struct {
	Name     string `json:"name" validate:"max=100"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (ac *AuthController) localAuthEnabled() error {
	if ac.Cfg.AuthProvider != config.AuthProviderJWT {
		return errs.Forbidden("local accounts are disabled; sign in with the identity provider")
	}
	return nil
}

// Register godoc
// @Summary Register a new user
// @Description Creates a local account and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	if err := ac.localAuthEnabled(); err != nil {
		return utils.Fail(c, err)
	}
	var input RegisterRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, err)
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		PhotoURL:     input.PhotoURL,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		LastLogin:    time.Now().UTC(),
	}
	if err := ac.Users.Create(c.UserContext(), &user); err != nil {
		return utils.Fail(c, err)
	}

	token, err := utils.GenerateJWTToken(user.Email, ac.Cfg.JWTSecret, ac.Cfg.JWTTTL)
	if err != nil {
		return utils.Fail(c, err)
	}
	ac.Log.Info("user registered", "email", user.Email)
	return utils.Created(c, AuthResponse{Token: token, User: &user})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	if err := ac.localAuthEnabled(); err != nil {
		return utils.Fail(c, err)
	}
	var input LoginRequest
	if err := parseBody(c, &input); err != nil {
		return utils.Fail(c, err)
	}

	// Find user
	user, err := ac.Users.FindByEmail(c.UserContext(), input.Email)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return utils.Fail(c, errs.Unauthorized("Invalid credentials"))
		}
		return utils.Fail(c, err)
	}

	// Check password
	if user.PasswordHash == "" {
		return utils.Fail(c, errs.Unauthorized("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return utils.Fail(c, errs.Unauthorized("Invalid credentials"))
		}
		return utils.Fail(c, err)
	}

	token, err := utils.GenerateJWTToken(user.Email, ac.Cfg.JWTSecret, ac.Cfg.JWTTTL)
	if err != nil {
		return utils.Fail(c, err)
	}

	now := time.Now().UTC()
	if err := ac.Users.TouchLogin(c.UserContext(), user.ID, now); err != nil {
		ac.Log.Warn("could not record login", "email", user.Email, "error", err)
	}
	user.LastLogin = now

	return utils.Success(c, fiber.StatusOK, AuthResponse{Token: token, User: user})
}

// SyncUser godoc
// @Summary Create or refresh the caller's account
// @Description Upserts the user identified by the token; an existing account only gets lastLogin refreshed
// @Tags users
// @Accept json
// @Produce json
// @Param input body SyncUserRequest false "Profile hints for first sign-in"
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users [post]
func (ac *AuthController) SyncUser(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	var input SyncUserRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return utils.Fail(c, err)
		}
	}

	user := models.User{Email: p.Email, Name: input.Name, PhotoURL: input.PhotoURL, Role: models.RoleUser}
	if claims := middleware.Claims(c); claims != nil {
		if user.Name == "" {
			user.Name = claims.Name
		}
		if user.PhotoURL == "" {
			user.PhotoURL = claims.Photo
		}
	}

	saved, err := ac.Users.Upsert(c.UserContext(), &user)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Success(c, fiber.StatusOK, saved)
}
