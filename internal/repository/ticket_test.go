package repository

import (
	"context"
	"testing"

	"litreview/internal/models"
	"litreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository_CRUD(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTicketRepository(db)
	photos := NewPhotoRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	photo := &models.Photo{UserID: alice.ID, Path: "/tmp/x.png", URL: "/media/x.png", MimeType: "image/png"}
	require.NoError(t, photos.Create(ctx, photo))

	ticket := &models.Ticket{Title: "Dune", Description: "Thoughts?", UserID: alice.ID, PhotoID: &photo.ID}
	require.NoError(t, repo.Create(ctx, ticket))
	require.NotZero(t, ticket.ID)

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)
	require.NotNil(t, got.Photo)
	assert.Equal(t, "/media/x.png", got.Photo.URL)

	got.Title = "Dune Messiah"
	got.PhotoID = nil
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Nil(t, updated.PhotoID)

	_, err = repo.GetByID(ctx, 4242)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestTicketRepository_DeleteCascadesReviews(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()
	clock := testutil.NewClock()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	ticket := testutil.CreateTicket(t, db, alice, "t", clock.Next())
	keep := testutil.CreateTicket(t, db, alice, "keep", clock.Next())
	testutil.CreateReview(t, db, bob, ticket, 3, clock.Next())
	testutil.CreateReview(t, db, bob, keep, 3, clock.Next())

	require.NoError(t, repo.Delete(ctx, ticket.ID))

	var reviews []models.Review
	require.NoError(t, db.Find(&reviews).Error)
	require.Len(t, reviews, 1)
	assert.Equal(t, keep.ID, reviews[0].TicketID)
}

func TestTicketRepository_DeletingPhotoDetachesTicket(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTicketRepository(db)
	photos := NewPhotoRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	photo := &models.Photo{UserID: alice.ID, Path: "p", URL: "u"}
	require.NoError(t, photos.Create(ctx, photo))
	ticket := &models.Ticket{Title: "with photo", UserID: alice.ID, PhotoID: &photo.ID}
	require.NoError(t, repo.Create(ctx, ticket))

	require.NoError(t, photos.Delete(ctx, photo.ID))

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PhotoID)
	assert.Nil(t, got.Photo)

	_, err = photos.GetByID(ctx, photo.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestTicketRepository_Annotate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()
	clock := testutil.NewClock()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	t1 := testutil.CreateTicket(t, db, alice, "one", clock.Next())
	t2 := testutil.CreateTicket(t, db, alice, "two", clock.Next())
	testutil.CreateReview(t, db, bob, t1, 1, clock.Next())
	testutil.CreateReview(t, db, carol, t1, 2, clock.Next())

	require.NoError(t, repo.Annotate(ctx, bob.ID, t1, t2, nil))
	assert.Equal(t, int64(2), t1.ReviewCount)
	assert.True(t, t1.AlreadyReviewed)
	assert.Zero(t, t2.ReviewCount)
	assert.False(t, t2.AlreadyReviewed)

	require.NoError(t, repo.Annotate(ctx, alice.ID, t1))
	assert.False(t, t1.AlreadyReviewed)

	require.NoError(t, repo.Annotate(ctx, alice.ID))
}
