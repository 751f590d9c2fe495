package repository

import (
	"context"
	"errors"

	"litreview/internal/models"

	"gorm.io/gorm"
)

// TicketRepository defines persistence operations for tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id uint) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	// Delete removes the ticket and every review attached to it.
	Delete(ctx context.Context, id uint) error
	// Annotate fills ReviewCount and AlreadyReviewed for viewerID on each ticket.
	Annotate(ctx context.Context, viewerID uint, tickets ...*models.Ticket) error
}

type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository returns a new TicketRepository implementation.
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if err := r.db.WithContext(ctx).Omit("User", "Photo").Create(ticket).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).Preload("User").Preload("Photo").First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ticket", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	if err := r.db.WithContext(ctx).
		Model(ticket).
		Updates(map[string]interface{}{
			"title":       ticket.Title,
			"description": ticket.Description,
			"photo_id":    ticket.PhotoID,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Ticket{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type ticketReviewCount struct {
	TicketID uint
	Count    int64
}

func (r *ticketRepository) Annotate(ctx context.Context, viewerID uint, tickets ...*models.Ticket) error {
	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	db := readDB(r.db).WithContext(ctx)

	var counts []ticketReviewCount
	if err := db.Model(&models.Review{}).
		Select("ticket_id, COUNT(*) AS count").
		Where("ticket_id IN ?", ids).
		Group("ticket_id").
		Scan(&counts).Error; err != nil {
		return models.NewInternalError(err)
	}

	var reviewed []uint
	if err := db.Model(&models.Review{}).
		Where("user_id = ? AND ticket_id IN ?", viewerID, ids).
		Pluck("ticket_id", &reviewed).Error; err != nil {
		return models.NewInternalError(err)
	}

	countByID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByID[c.TicketID] = c.Count
	}
	reviewedByID := make(map[uint]bool, len(reviewed))
	for _, id := range reviewed {
		reviewedByID[id] = true
	}

	for _, t := range tickets {
		if t == nil {
			continue
		}
		t.ReviewCount = countByID[t.ID]
		t.AlreadyReviewed = reviewedByID[t.ID]
	}
	return nil
}
