package repository

import (
	"context"
	"errors"

	"litreview/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	// CreateWithTicket stores ticket and then review against it in one transaction.
	CreateWithTicket(ctx context.Context, ticket *models.Ticket, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	ExistsForUser(ctx context.Context, ticketID, userID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func duplicateReviewError() error {
	return models.NewValidationError("You have already reviewed this ticket")
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("User", "Ticket").Create(review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return duplicateReviewError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) CreateWithTicket(ctx context.Context, ticket *models.Ticket, review *models.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Photo").Create(ticket).Error; err != nil {
			return err
		}
		review.TicketID = ticket.ID
		return tx.Omit("User", "Ticket").Create(review).Error
	})
	if err != nil {
		ticket.ID = 0
		review.TicketID = 0
		if isUniqueConstraintError(err) {
			return duplicateReviewError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Ticket.User").
		Preload("Ticket.Photo").
		First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).
		Model(review).
		Updates(map[string]interface{}{
			"rating":   review.Rating,
			"headline": review.Headline,
			"body":     review.Body,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	review.Stars = models.StarRating(review.Rating)
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) ExistsForUser(ctx context.Context, ticketID, userID uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Review{}).
		Where("ticket_id = ? AND user_id = ?", ticketID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
