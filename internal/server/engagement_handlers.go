package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

type postKeyRequest struct {
	PostID uint `json:"post_id"`
}

func parsePostKey(c *fiber.Ctx) (uint, error) {
	var req postKeyRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return 0, models.NewValidationError("post_id is required")
	}
	return req.PostID, nil
}

// HandlePostLike handles POST /handle-post-like.
func (s *Server) HandlePostLike(c *fiber.Ctx) error {
	postID, err := parsePostKey(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	res, err := s.engService.ToggleLike(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{
		"liked":      res.Active,
		"like_count": res.Count,
	})
}

// HandlePostSave handles POST /handle-post-save.
func (s *Server) HandlePostSave(c *fiber.Ctx) error {
	postID, err := parsePostKey(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	res, err := s.engService.ToggleSave(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{
		"saved":      res.Active,
		"save_count": res.Count,
	})
}

// HandlePostComment handles POST /handle-post-comment.
func (s *Server) HandlePostComment(c *fiber.Ctx) error {
	var req struct {
		PostID  uint   `json:"post_id"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	res, err := s.engService.AddComment(c.Context(), currentUserID(c), req.PostID, req.Comment)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comment":  res.Comment,
		"comments": res.Comments,
	})
}

// HandleCommentLike handles POST /handle-comment-like.
func (s *Server) HandleCommentLike(c *fiber.Ctx) error {
	var req struct {
		PostID    uint   `json:"post_id"`
		CommentID string `json:"comment_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 || req.CommentID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id and comment_id are required"))
	}

	res, err := s.engService.ToggleCommentLike(c.Context(), currentUserID(c), req.PostID, req.CommentID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{
		"liked":      res.Active,
		"like_count": res.Count,
		"comment_id": req.CommentID,
	})
}
