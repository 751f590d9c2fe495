package server

import (
	"strings"

	"litreview/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowsResponse lists both directions of the viewer's follow edges.
type FollowsResponse struct {
	Edges []models.FollowEdge `json:"edges"`
}

// Follow handles POST /api/follows
// @Summary Follow a user
// @Description Idempotent: following someone twice returns the existing edge with 200
// @Tags follows
// @Accept json
// @Produce json
// @Param request body object{username=string} true "User to follow"
// @Success 201 {object} models.FollowEdge
// @Success 200 {object} models.FollowEdge
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follows [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Username) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	edge, created, err := s.socialService.Follow(c.UserContext(), currentUserID(c), req.Username)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(edge)
}

// Unfollow handles DELETE /api/follows/:id
// @Summary Unfollow
// @Description Removes your follow edge. Unknown edges are a no-op.
// @Tags follows
// @Param id path int true "Follow edge ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follows/{id} [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	edgeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.socialService.Unfollow(c.UserContext(), currentUserID(c), edgeID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleBlock handles POST /api/follows/:id/block
// @Summary Block or unblock a follower
// @Description Flips the block flag on an edge where you are the followed user
// @Tags follows
// @Produce json
// @Param id path int true "Follow edge ID"
// @Success 200 {object} models.FollowEdge
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follows/{id}/block [post]
func (s *Server) ToggleBlock(c *fiber.Ctx) error {
	edgeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	edge, err := s.socialService.ToggleBlock(c.UserContext(), currentUserID(c), edgeID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(edge)
}

// GetFollowings handles GET /api/follows/following
// @Summary Users you follow
// @Tags follows
// @Produce json
// @Success 200 {object} FollowsResponse
// @Security BearerAuth
// @Router /follows/following [get]
func (s *Server) GetFollowings(c *fiber.Ctx) error {
	edges, err := s.socialService.Followings(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(FollowsResponse{Edges: nonNilEdges(edges)})
}

// GetFollowers handles GET /api/follows/followers
// @Summary Users following you
// @Tags follows
// @Produce json
// @Success 200 {object} FollowsResponse
// @Security BearerAuth
// @Router /follows/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	edges, err := s.socialService.Followers(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(FollowsResponse{Edges: nonNilEdges(edges)})
}

func nonNilEdges(edges []models.FollowEdge) []models.FollowEdge {
	if edges == nil {
		return []models.FollowEdge{}
	}
	return edges
}
