package server

import (
	"litreview/internal/models"
	"litreview/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TicketRequest is the body of POST /api/tickets.
type TicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PhotoID     *uint  `json:"photo_id,omitempty"`
}

// UpdateTicketRequest carries the fields to change; omitted fields are kept.
type UpdateTicketRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PhotoID     *uint   `json:"photo_id,omitempty"`
	ClearPhoto  bool    `json:"clear_photo,omitempty"`
}

// TicketWithReviewRequest creates a ticket and the author's own review of it in one step.
type TicketWithReviewRequest struct {
	Ticket TicketRequest `json:"ticket"`
	Review ReviewRequest `json:"review"`
}

// CreateTicket handles POST /api/tickets
// @Summary Request a review
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body TicketRequest true "Ticket"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets [post]
func (s *Server) CreateTicket(c *fiber.Ctx) error {
	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ticket, err := s.ticketService.CreateTicket(c.UserContext(), service.CreateTicketInput{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// CreateTicketWithReview handles POST /api/tickets/with-review
// @Summary Create a ticket together with a review
// @Description Both rows are written in one transaction; either both exist afterwards or neither does
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body TicketWithReviewRequest true "Ticket and review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets/with-review [post]
func (s *Server) CreateTicketWithReview(c *fiber.Ctx) error {
	var req TicketWithReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateTicketWithReview(c.UserContext(), service.CreateTicketWithReviewInput{
		UserID:      currentUserID(c),
		Title:       req.Ticket.Title,
		Description: req.Ticket.Description,
		PhotoID:     req.Ticket.PhotoID,
		Rating:      req.Review.Rating,
		Headline:    req.Review.Headline,
		Body:        req.Review.Body,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetTicket handles GET /api/tickets/:id
// @Summary Get a ticket
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [get]
func (s *Server) GetTicket(c *fiber.Ctx) error {
	ticketID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ticket, err := s.ticketService.GetTicket(c.UserContext(), currentUserID(c), ticketID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(ticket)
}

// UpdateTicket handles PUT /api/tickets/:id
// @Summary Edit your ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [put]
func (s *Server) UpdateTicket(c *fiber.Ctx) error {
	ticketID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ticket, err := s.ticketService.UpdateTicket(c.UserContext(), service.UpdateTicketInput{
		UserID:      currentUserID(c),
		TicketID:    ticketID,
		Title:       req.Title,
		Description: req.Description,
		PhotoID:     req.PhotoID,
		ClearPhoto:  req.ClearPhoto,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(ticket)
}

// DeleteTicket handles DELETE /api/tickets/:id
// @Summary Delete your ticket
// @Description Reviews of the ticket are deleted with it
// @Tags tickets
// @Param id path int true "Ticket ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [delete]
func (s *Server) DeleteTicket(c *fiber.Ctx) error {
	ticketID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.ticketService.DeleteTicket(c.UserContext(), service.DeleteTicketInput{
		UserID:   currentUserID(c),
		TicketID: ticketID,
	}); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
