package models

import "time"

const (
	// PhotoMaxWidth is the bounding box width uploaded photos are fitted into.
	PhotoMaxWidth = 400
	// PhotoMaxHeight is the bounding box height uploaded photos are fitted into.
	PhotoMaxHeight = 400
)

// Photo is an uploaded image stored on disk, resized to fit PhotoMaxWidth x PhotoMaxHeight.
type Photo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Path      string    `gorm:"size:512;not null" json:"-"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:50" json:"mime_type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Photo) TableName() string {
	return "photos"
}
