package server

import (
	"litreview/internal/models"
	"litreview/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReviewRequest is the body for writing a review.
type ReviewRequest struct {
	Rating   int    `json:"rating"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// UpdateReviewRequest carries the fields to change; omitted fields are kept.
type UpdateReviewRequest struct {
	Rating   *int    `json:"rating,omitempty"`
	Headline *string `json:"headline,omitempty"`
	Body     *string `json:"body,omitempty"`
}

// CreateReview handles POST /api/tickets/:id/reviews
// @Summary Review a ticket
// @Description One review per user and ticket. The ticket author is notified unless reviewing their own ticket.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body ReviewRequest true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id}/reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	ticketID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateReview(c.UserContext(), service.CreateReviewInput{
		UserID:   currentUserID(c),
		TicketID: ticketID,
		Rating:   req.Rating,
		Headline: req.Headline,
		Body:     req.Body,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReview handles GET /api/reviews/:id
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reviews/{id} [get]
func (s *Server) GetReview(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	review, err := s.reviewService.GetReview(c.UserContext(), reviewID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(review)
}

// UpdateReview handles PUT /api/reviews/:id
// @Summary Edit your review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} models.Review
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reviews/{id} [put]
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.UpdateReview(c.UserContext(), service.UpdateReviewInput{
		UserID:   currentUserID(c),
		ReviewID: reviewID,
		Rating:   req.Rating,
		Headline: req.Headline,
		Body:     req.Body,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/reviews/:id
// @Summary Delete your review
// @Tags reviews
// @Param id path int true "Review ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reviews/{id} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.reviewService.DeleteReview(c.UserContext(), service.DeleteReviewInput{
		UserID:   currentUserID(c),
		ReviewID: reviewID,
	}); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
