package server

import (
	"io"

	"litreview/internal/models"
	"litreview/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadPhoto handles POST /api/photos
// @Summary Upload a photo
// @Description The image is resized to fit 400x400 and served from /media
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image (jpeg, png, gif or webp)"
// @Success 201 {object} models.Photo
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /photos [post]
func (s *Server) UploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	photo, err := s.photoService.Upload(c.UserContext(), service.UploadPhotoInput{
		UserID:  currentUserID(c),
		Content: content,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

// GetPhoto handles GET /api/photos/:id
// @Summary Photo metadata
// @Tags photos
// @Produce json
// @Param id path int true "Photo ID"
// @Success 200 {object} models.Photo
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /photos/{id} [get]
func (s *Server) GetPhoto(c *fiber.Ctx) error {
	photoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	photo, err := s.photoService.Get(c.UserContext(), photoID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(photo)
}

// DeletePhoto handles DELETE /api/photos/:id
// @Summary Delete your photo
// @Description Tickets using the photo keep existing without it
// @Tags photos
// @Param id path int true "Photo ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /photos/{id} [delete]
func (s *Server) DeletePhoto(c *fiber.Ctx) error {
	photoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.photoService.Delete(c.UserContext(), currentUserID(c), photoID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
