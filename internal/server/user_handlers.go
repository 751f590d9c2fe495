package server

import (
	"strings"

	"litreview/internal/models"
	"litreview/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(user)
}

// UpdateProfileRequest carries the profile fields to change; omitted fields are kept.
type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// UpdateMe handles PATCH /api/users/me
// @Summary Edit own profile
// @Description Changes email and bio. An empty email clears it.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" {
			if err := validation.ValidateEmail(email); err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError(err.Error()))
			}
		}
		user.Email = email
	}
	if req.Bio != nil {
		bio, err := validation.Optional("bio", *req.Bio, validation.BioMaxLength)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		user.Bio = bio
	}

	if err := s.userRepo.Update(c.UserContext(), user); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Description Users ordered by username, for picking someone to follow
// @Tags users
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(c.UserContext(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:username
// @Summary User profile
// @Description Public profile with follower and following counts
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.socialService.Profile(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(profile)
}
