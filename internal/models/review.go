package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	// MinRating is the lowest accepted review rating.
	MinRating = 0
	// MaxRating is the highest accepted review rating.
	MaxRating = 5
)

// Review is a rated critique attached to exactly one ticket.
// A user reviews a given ticket at most once.
type Review struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	TicketID uint    `gorm:"not null;uniqueIndex:idx_reviews_ticket_user,priority:1" json:"ticket_id"`
	Ticket   *Ticket `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"ticket,omitempty"`
	UserID   uint    `gorm:"not null;uniqueIndex:idx_reviews_ticket_user,priority:2;index" json:"user_id"`
	User     User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Rating   int     `gorm:"not null;check:chk_reviews_rating,rating >= 0 AND rating <= 5" json:"rating"`
	Headline string  `gorm:"size:128;not null" json:"headline"`
	Body     string  `gorm:"size:8192" json:"body"`
	// Stars is the rating rendered as filled and empty stars (computed)
	Stars     string    `gorm:"-" json:"stars"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// AfterFind fills computed fields.
func (r *Review) AfterFind(_ *gorm.DB) error {
	r.Stars = StarRating(r.Rating)
	return nil
}

// AfterSave fills computed fields.
func (r *Review) AfterSave(_ *gorm.DB) error {
	r.Stars = StarRating(r.Rating)
	return nil
}

// StarRating renders a rating as "★" repeated rating times followed by "☆" up to MaxRating.
func StarRating(rating int) string {
	if rating < MinRating {
		rating = MinRating
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}
