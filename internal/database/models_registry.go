package database

import "litreview/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// ordered so that referenced tables are created first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FollowEdge{},
		&models.Photo{},
		&models.Ticket{},
		&models.Review{},
	}
}
