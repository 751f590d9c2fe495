package server

import (
	"litreview/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetHomeFeed handles GET /api/feed
// @Summary Home feed
// @Description Own posts, posts by followed users and reviews of your tickets, newest first, minus blocked users
// @Tags feed
// @Produce json
// @Param page query int false "1-based page number; out of range pages clamp to the last page"
// @Success 200 {object} models.PageOfPosts
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /feed [get]
func (s *Server) GetHomeFeed(c *fiber.Ctx) error {
	page, err := s.feedService.GetHomeFeed(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(page)
}

// GetUserFeed handles GET /api/posts
// @Summary Own posts
// @Description Tickets and reviews written by the authenticated user, newest first
// @Tags feed
// @Produce json
// @Param page query int false "1-based page number"
// @Success 200 {object} models.PageOfPosts
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [get]
func (s *Server) GetUserFeed(c *fiber.Ctx) error {
	page, err := s.feedService.GetUserFeed(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(page)
}
