package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /upload-image: streams a multipart image to the
// object store and returns the reference URL to persist on a post or
// profile. The core never sees the bytes again.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("image file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("could not read uploaded file"))
	}
	defer file.Close()

	url, err := s.imageService.Upload(
		c.Context(),
		file,
		fileHeader.Size,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(c, err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
