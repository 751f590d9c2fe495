package models

import "time"

// Ticket is a request for a review, optionally illustrated with a photo.
type Ticket struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:128;not null" json:"title"`
	Description string `gorm:"size:2048" json:"description"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	PhotoID     *uint  `gorm:"index" json:"photo_id,omitempty"`
	Photo       *Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:SET NULL" json:"photo,omitempty"`
	// ReviewCount is not persisted; computed at query time
	ReviewCount int64 `gorm:"-" json:"review_count"`
	// AlreadyReviewed reports whether the requesting user has reviewed this ticket (computed)
	AlreadyReviewed bool      `gorm:"-" json:"already_reviewed"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}
