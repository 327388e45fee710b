package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /user-profile: the caller's full identity record,
// engagement state included.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetProfiles handles GET /profiles: every user's public profile.
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.userService.ListProfiles(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

// GetAuthorProfile handles POST /authorprofile: another user's public
// profile plus their posts.
func (s *Server) GetAuthorProfile(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	profile, err := s.userService.GetProfile(c.Context(), req.UserID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	posts, err := s.postService.AuthoredPosts(c.Context(), req.UserID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"posts":   posts,
	})
}

// EditProfile handles POST /editprofile: a partial update of the caller's
// own profile. Omitted fields stay untouched.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Bio       *string `json:"bio"`
		Avatar    *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    currentUserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.JSON(fiber.Map{"user": user})
}
