package handlers

import (
	"log/slog"
	"strconv"

	"socialize/internal/middleware"
	"socialize/internal/models"
	"socialize/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service *services.PostService
	log     *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService, log *slog.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the post routes. All of them need an authenticated user.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleGetPosts)
	postRoutes.Get("/:id", h.HandleGetPostByID)
	postRoutes.Post("/", h.HandleCreatePost)
	postRoutes.Put("/:id", h.HandleUpdatePost)
	postRoutes.Delete("/:id", h.HandleDeletePost)
}

// HandleGetPosts lists the posts of the authenticated user.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	posts, err := h.service.ListPosts(userID)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve posts", err)
	}
	return c.JSON(posts)
}

// HandleGetPostByID retrieves a single post by its ID.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.service.GetPostByID(id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve post", err)
	}
	return c.JSON(post)
}

// HandleCreatePost creates a post authored by the authenticated user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		return invalidBody(c, err)
	}

	if err := h.service.CreatePost(userID, &post); err != nil {
		return respondError(c, h.log, "Could not create post", err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdatePost changes the title and body of a post of the authenticated user.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, err := postID(c)
	if err != nil {
		return err
	}
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		return invalidBody(c, err)
	}
	post.ID = id

	if err := h.service.UpdatePost(userID, &post); err != nil {
		return respondError(c, h.log, "Could not update post", err)
	}
	return c.JSON(post)
}

// HandleDeletePost deletes a post of the authenticated user.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, err := postID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePost(userID, id); err != nil {
		return respondError(c, h.log, "Could not delete post", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func postID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid post ID")
	}
	return uint(id), nil
}
