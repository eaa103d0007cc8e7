package handlers

import (
	"log/slog"
	"strconv"

	"socialize/internal/forms"
	"socialize/internal/middleware"
	"socialize/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for accounts and profiles.
type UserHandler struct {
	userService *services.UserService
	log         *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the routes that need an authenticated user.
func (h *UserHandler) RegisterProtectedRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Patch("/me", h.HandleUpdateMe)
	userRoutes.Delete("/me", h.HandleDeleteMe)
	userRoutes.Get("/me/form", h.HandleEditForm)
	userRoutes.Put("/me/password", h.HandleChangePassword)
	userRoutes.Put("/me/presence", h.HandlePresence)
	userRoutes.Get("/:id/posts", h.HandlePostsByID)
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var form forms.UserCreationForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.userService.Register(form)
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username and password are required",
		})
	}

	token, err := h.userService.LoginUser(req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleGetMe returns the profile of the authenticated user.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	user, err := h.userService.GetUser(id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve user", err)
	}
	return c.JSON(user)
}

// HandleEditForm returns the profile of the authenticated user as an edit form.
func (h *UserHandler) HandleEditForm(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	form, err := h.userService.EditForm(id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve user", err)
	}
	return c.JSON(form)
}

// HandleUpdateMe merges the supplied profile fields into the authenticated user.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var form forms.UserUpdateForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.userService.UpdateProfile(id, form)
	if err != nil {
		return respondError(c, h.log, "Could not update profile", err)
	}
	return c.JSON(user)
}

// HandleChangePassword replaces the password of the authenticated user.
func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var form forms.PasswordChangeForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}

	if err := h.userService.ChangePassword(id, form); err != nil {
		return respondError(c, h.log, "Could not change password", err)
	}
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// HandlePresence records whether the authenticated user has a live session.
func (h *UserHandler) HandlePresence(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, err)
	}
	if body.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "active is required",
		})
	}

	if err := h.userService.SetActive(id, *body.Active); err != nil {
		return respondError(c, h.log, "Could not update presence", err)
	}
	return c.JSON(fiber.Map{
		"message": "Presence updated",
		"active":  *body.Active,
	})
}

// HandleDeleteMe flags the authenticated user as deleted.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := h.userService.DeleteUser(id); err != nil {
		return respondError(c, h.log, "Could not delete user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandlePostsByID returns the posts of a user keyed by post ID.
func (h *UserHandler) HandlePostsByID(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID",
		})
	}

	posts, err := h.userService.PostsByID(uint(userID))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve posts", err)
	}
	return c.JSON(posts)
}
