package testutil

import (
	"fmt"
	"testing"
	"time"

	"litreview/internal/database"
	"litreview/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an isolated in-memory sqlite database with foreign keys on
// and the full schema migrated. It is closed when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateUser inserts a user with a bcrypt-hashed "password".
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// Follow inserts a follow edge from follower to followed.
func Follow(t testing.TB, db *gorm.DB, follower, followed *models.User, blocked bool) *models.FollowEdge {
	t.Helper()
	edge := &models.FollowEdge{FollowerID: follower.ID, FollowedID: followed.ID}
	if err := db.Create(edge).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
	if blocked {
		if err := db.Model(edge).Update("blocked", true).Error; err != nil {
			t.Fatalf("block follow: %v", err)
		}
		edge.Blocked = true
	}
	return edge
}

// CreateTicket inserts a ticket by author at the given time.
func CreateTicket(t testing.TB, db *gorm.DB, author *models.User, title string, at time.Time) *models.Ticket {
	t.Helper()
	ticket := &models.Ticket{Title: title, UserID: author.ID, CreatedAt: at, UpdatedAt: at}
	if err := db.Omit("User", "Photo").Create(ticket).Error; err != nil {
		t.Fatalf("create ticket %s: %v", title, err)
	}
	return ticket
}

// CreateReview inserts a review by author on ticket at the given time.
func CreateReview(t testing.TB, db *gorm.DB, author *models.User, ticket *models.Ticket, rating int, at time.Time) *models.Review {
	t.Helper()
	review := &models.Review{
		TicketID:  ticket.ID,
		UserID:    author.ID,
		Rating:    rating,
		Headline:  fmt.Sprintf("%s on %s", author.Username, ticket.Title),
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := db.Omit("User", "Ticket").Create(review).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return review
}

// Clock hands out strictly increasing UTC timestamps.
type Clock struct {
	now time.Time
}

// NewClock starts a Clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Next advances the clock by one minute and returns the new time.
func (c *Clock) Next() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}
