package server

import (
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// setSessionCookie issues the session cookie: not readable by scripts,
// Lax same-site, HTTPS-only in production.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Signup handles POST /signup: registers an account and starts a session.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.Context(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// Login handles POST /login: verifies credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{"user": user})
}

// Logout handles POST /logout: ends the session by clearing the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
