package service

import (
	"context"
	"log/slog"

	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/notifications"
	"litreview/internal/repository"
	"litreview/internal/validation"
)

// ReviewService manages reviews and the combined ticket-and-review flow.
type ReviewService struct {
	reviews repository.ReviewRepository
	tickets repository.TicketRepository
	photos  repository.PhotoRepository
	events  EventPublisher
}

type CreateReviewInput struct {
	UserID   uint
	TicketID uint
	Rating   int
	Headline string
	Body     string
}

type CreateTicketWithReviewInput struct {
	UserID      uint
	Title       string
	Description string
	PhotoID     *uint
	Rating      int
	Headline    string
	Body        string
}

type UpdateReviewInput struct {
	UserID   uint
	ReviewID uint
	Rating   *int
	Headline *string
	Body     *string
}

type DeleteReviewInput struct {
	UserID   uint
	ReviewID uint
}

// NewReviewService returns a new ReviewService. events may be nil.
func NewReviewService(
	reviews repository.ReviewRepository,
	tickets repository.TicketRepository,
	photos repository.PhotoRepository,
	events EventPublisher,
) *ReviewService {
	return &ReviewService{reviews: reviews, tickets: tickets, photos: photos, events: events}
}

func newReview(userID, ticketID uint, rating int, headline, body string) (*models.Review, error) {
	if err := validation.Rating(rating, models.MinRating, models.MaxRating); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	h, err := validation.Required("headline", headline, validation.ReviewHeadlineMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	b, err := validation.Optional("body", body, validation.ReviewBodyMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return &models.Review{TicketID: ticketID, UserID: userID, Rating: rating, Headline: h, Body: b}, nil
}

// CreateReview reviews an existing ticket. A user reviews a ticket at most once.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	ticket, err := s.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	review, err := newReview(in.UserID, ticket.ID, in.Rating, in.Headline, in.Body)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	created, err := s.reviews.GetByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != in.UserID {
		s.notifyTicketAuthor(ctx, ticket.UserID, created)
	}
	return created, nil
}

// CreateTicketWithReview creates a ticket and the author's review of it atomically.
func (s *ReviewService) CreateTicketWithReview(ctx context.Context, in CreateTicketWithReviewInput) (*models.Review, error) {
	ticket, err := newTicket(ctx, s.photos, CreateTicketInput{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		PhotoID:     in.PhotoID,
	})
	if err != nil {
		return nil, err
	}
	review, err := newReview(in.UserID, 0, in.Rating, in.Headline, in.Body)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.CreateWithTicket(ctx, ticket, review); err != nil {
		return nil, err
	}
	return s.reviews.GetByID(ctx, review.ID)
}

// GetReview returns a review with its author and ticket.
func (s *ReviewService) GetReview(ctx context.Context, reviewID uint) (*models.Review, error) {
	return s.reviews.GetByID(ctx, reviewID)
}

// UpdateReview edits a review owned by in.UserID. Nil fields are left unchanged.
func (s *ReviewService) UpdateReview(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, in.ReviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own reviews")
	}

	rating, headline, body := review.Rating, review.Headline, review.Body
	if in.Rating != nil {
		rating = *in.Rating
	}
	if in.Headline != nil {
		headline = *in.Headline
	}
	if in.Body != nil {
		body = *in.Body
	}
	next, err := newReview(review.UserID, review.TicketID, rating, headline, body)
	if err != nil {
		return nil, err
	}

	review.Rating, review.Headline, review.Body = next.Rating, next.Headline, next.Body
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review owned by in.UserID.
func (s *ReviewService) DeleteReview(ctx context.Context, in DeleteReviewInput) error {
	review, err := s.reviews.GetByID(ctx, in.ReviewID)
	if err != nil {
		return err
	}
	if review.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own reviews")
	}
	return s.reviews.Delete(ctx, review.ID)
}

func (s *ReviewService) notifyTicketAuthor(ctx context.Context, authorID uint, review *models.Review) {
	if s.events == nil {
		return
	}
	e := notifications.NewEvent(notifications.EventReviewCreated, review.UserID, review.User.Username)
	e.TicketID = &review.TicketID
	e.ReviewID = &review.ID
	if err := s.events.PublishEvent(ctx, authorID, e); err != nil {
		middleware.Logger.WarnContext(ctx, "notification publish failed",
			slog.String("type", string(e.Type)), slog.String("error", err.Error()))
	}
}
