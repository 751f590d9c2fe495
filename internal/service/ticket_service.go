package service

import (
	"context"

	"litreview/internal/models"
	"litreview/internal/repository"
	"litreview/internal/validation"
)

// TicketService manages review requests.
type TicketService struct {
	tickets repository.TicketRepository
	photos  repository.PhotoRepository
}

type CreateTicketInput struct {
	UserID      uint
	Title       string
	Description string
	PhotoID     *uint
}

type UpdateTicketInput struct {
	UserID      uint
	TicketID    uint
	Title       *string
	Description *string
	PhotoID     *uint
	ClearPhoto  bool
}

type DeleteTicketInput struct {
	UserID   uint
	TicketID uint
}

// NewTicketService returns a new TicketService.
func NewTicketService(tickets repository.TicketRepository, photos repository.PhotoRepository) *TicketService {
	return &TicketService{tickets: tickets, photos: photos}
}

// checkPhoto verifies photoID exists and was uploaded by userID.
func checkPhoto(ctx context.Context, photos repository.PhotoRepository, userID uint, photoID *uint) error {
	if photoID == nil {
		return nil
	}
	photo, err := photos.GetByID(ctx, *photoID)
	if err != nil {
		return err
	}
	if photo.UserID != userID {
		return models.NewForbiddenError("You can only attach your own photos")
	}
	return nil
}

// newTicket validates in and builds the ticket it describes.
func newTicket(ctx context.Context, photos repository.PhotoRepository, in CreateTicketInput) (*models.Ticket, error) {
	title, err := validation.Required("title", in.Title, validation.TicketTitleMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	description, err := validation.Optional("description", in.Description, validation.TicketDescriptionMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := checkPhoto(ctx, photos, in.UserID, in.PhotoID); err != nil {
		return nil, err
	}
	return &models.Ticket{
		Title:       title,
		Description: description,
		UserID:      in.UserID,
		PhotoID:     in.PhotoID,
	}, nil
}

// CreateTicket stores a new ticket authored by in.UserID.
func (s *TicketService) CreateTicket(ctx context.Context, in CreateTicketInput) (*models.Ticket, error) {
	ticket, err := newTicket(ctx, s.photos, in)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return s.GetTicket(ctx, in.UserID, ticket.ID)
}

// GetTicket returns a ticket with its review count and whether viewerID reviewed it.
func (s *TicketService) GetTicket(ctx context.Context, viewerID, ticketID uint) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Annotate(ctx, viewerID, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTicket edits a ticket owned by in.UserID. Nil fields are left unchanged.
func (s *TicketService) UpdateTicket(ctx context.Context, in UpdateTicketInput) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own tickets")
	}

	if in.Title != nil {
		title, err := validation.Required("title", *in.Title, validation.TicketTitleMaxLength)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		ticket.Title = title
	}
	if in.Description != nil {
		description, err := validation.Optional("description", *in.Description, validation.TicketDescriptionMaxLength)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		ticket.Description = description
	}
	switch {
	case in.ClearPhoto:
		ticket.PhotoID = nil
	case in.PhotoID != nil:
		if err := checkPhoto(ctx, s.photos, in.UserID, in.PhotoID); err != nil {
			return nil, err
		}
		ticket.PhotoID = in.PhotoID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return s.GetTicket(ctx, in.UserID, ticket.ID)
}

// DeleteTicket removes a ticket owned by in.UserID together with its reviews.
// The attached photo, if any, is kept.
func (s *TicketService) DeleteTicket(ctx context.Context, in DeleteTicketInput) error {
	ticket, err := s.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return err
	}
	if ticket.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own tickets")
	}
	return s.tickets.Delete(ctx, ticket.ID)
}
