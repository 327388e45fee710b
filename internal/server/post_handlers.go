package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /postarticle.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
		ImageURL string `json:"image_url"`
		Duration int    `json:"duration"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Duration: req.Duration,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id": post.ID,
		"post":    post,
	})
}

// GetArticle handles POST /article: resolves one post with its comments.
func (s *Server) GetArticle(c *fiber.Ctx) error {
	var req struct {
		PostID uint `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	post, err := s.postService.GetPost(c.Context(), req.PostID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// Explore handles GET /explore: the unfiltered public feed.
func (s *Server) Explore(c *fiber.Ctx) error {
	posts, err := s.postService.Explore(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetMyPosts handles GET /myposts.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.AuthoredPosts(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetLikedPosts handles GET /likedposts.
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	posts, err := s.postService.LikedPosts(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetSavedPosts handles GET /savedposts.
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	posts, err := s.postService.SavedPosts(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
