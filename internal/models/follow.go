package models

import "time"

// FollowEdge is a directed follow from Follower to Followed.
// Blocked is owned by the followed party: it means Followed has blocked Follower.
type FollowEdge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_edges_pair,priority:1" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follow_edges_pair,priority:2;index:idx_follow_edges_followed" json:"followed_id"`
	Blocked    bool      `gorm:"not null;default:false" json:"blocked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"followed,omitempty"`
}

// TableName specifies the table name for GORM
func (FollowEdge) TableName() string {
	return "follow_edges"
}
