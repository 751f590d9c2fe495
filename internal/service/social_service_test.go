package service

import (
	"context"
	"testing"

	"litreview/internal/models"
	"litreview/internal/notifications"
	"litreview/internal/repository"
	"litreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLiteSocialService(t *testing.T) (*SocialService, *gorm.DB, *eventRecorder) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	events := newEventRecorder()
	svc := NewSocialService(repository.NewFollowRepository(db), repository.NewUserRepository(db), events)
	return svc, db, events
}

func TestSocialServiceFollowSelf(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: 7, Username: "me"}, nil
	}
	follows := noopFollowRepo()
	follows.followFn = func(context.Context, uint, uint) (*models.FollowEdge, bool, error) {
		t.Fatal("follow should not reach the repository")
		return nil, false, nil
	}
	svc := NewSocialService(follows, users, nil)

	_, _, err := svc.Follow(context.Background(), 7, "me")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestSocialServiceFollowUnknownUser(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return nil, models.NewNotFoundError("User", username)
	}
	svc := NewSocialService(noopFollowRepo(), users, nil)

	_, _, err := svc.Follow(context.Background(), 1, "  Ghost ")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Contains(t, err.Error(), "User ghost does not exist")
}

func TestSocialServiceFollowPropagatesLookupFailure(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return nil, models.NewInternalError(errBoom)
	}
	svc := NewSocialService(noopFollowRepo(), users, nil)

	_, _, err := svc.Follow(context.Background(), 1, "bob")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestSocialServiceFollowPublishFailureIsNotFatal(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: 2, Username: "bob"}, nil
	}
	events := newEventRecorder()
	events.err = errBoom
	svc := NewSocialService(noopFollowRepo(), users, events)

	edge, created, err := svc.Follow(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(2), edge.FollowedID)
}

func TestSocialServiceFollowIsIdempotent(t *testing.T) {
	svc, db, events := newSQLiteSocialService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	first, created, err := svc.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Follow(ctx, alice.ID, "BOB")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followed_id = ?", alice.ID, bob.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got := events.For(bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, notifications.EventFollowCreated, got[0].Type)
	assert.Equal(t, alice.ID, got[0].ActorID)
	assert.Equal(t, "alice", got[0].ActorName)
	require.NotNil(t, got[0].EdgeID)
	assert.Equal(t, first.ID, *got[0].EdgeID)
}

func TestSocialServiceFollowSelfSQLite(t *testing.T) {
	svc, db, events := newSQLiteSocialService(t)
	alice := testutil.CreateUser(t, db, "alice")

	_, _, err := svc.Follow(context.Background(), alice.ID, "alice")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Zero(t, events.Total())
}

func TestSocialServiceUnfollow(t *testing.T) {
	svc, db, _ := newSQLiteSocialService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	edge := testutil.Follow(t, db, alice, bob, false)

	t.Run("missing edge is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Unfollow(ctx, alice.ID, 9999))
	})

	t.Run("someone else's edge is left alone", func(t *testing.T) {
		require.NoError(t, svc.Unfollow(ctx, bob.ID, edge.ID))
		ids, err := svc.FollowedSet(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{bob.ID}, ids)
	})

	t.Run("owner removes the edge", func(t *testing.T) {
		require.NoError(t, svc.Unfollow(ctx, alice.ID, edge.ID))
		ids, err := svc.FollowedSet(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
		require.NoError(t, svc.Unfollow(ctx, alice.ID, edge.ID))
	})
}

func TestSocialServiceToggleBlockRoundTrip(t *testing.T) {
	svc, db, _ := newSQLiteSocialService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	edge := testutil.Follow(t, db, alice, bob, false)

	blocked, err := svc.ToggleBlock(ctx, bob.ID, edge.ID)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	ids, err := svc.BlockedCombined(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
	ids, err = svc.BlockedCombined(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	unblocked, err := svc.ToggleBlock(ctx, bob.ID, edge.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)
}

func TestSocialServiceToggleBlockRequiresFollowedParty(t *testing.T) {
	svc, db, _ := newSQLiteSocialService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	edge := testutil.Follow(t, db, alice, bob, false)

	_, err := svc.ToggleBlock(ctx, alice.ID, edge.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = svc.ToggleBlock(ctx, bob.ID, 9999)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestSocialServiceFollowingsFollowersAndProfile(t *testing.T) {
	svc, db, _ := newSQLiteSocialService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	testutil.Follow(t, db, alice, bob, false)
	testutil.Follow(t, db, alice, carol, false)
	testutil.Follow(t, db, carol, alice, true)

	followings, err := svc.Followings(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followings, 2)
	for _, f := range followings {
		require.NotNil(t, f.Followed)
		assert.Equal(t, alice.ID, f.FollowerID)
	}

	followers, err := svc.Followers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	require.NotNil(t, followers[0].Follower)
	assert.Equal(t, "carol", followers[0].Follower.Username)
	assert.True(t, followers[0].Blocked)

	profile, err := svc.Profile(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.User.ID)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Equal(t, int64(2), profile.FollowingCount)

	_, err = svc.Profile(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
