// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"

	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/notifications"
	"litreview/internal/observability"
	"litreview/internal/repository"
)

// EventPublisher delivers realtime notifications to a user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, e notifications.Event) error
}

// SocialService manages follow edges and blocks.
type SocialService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	events  EventPublisher
}

// NewSocialService returns a new SocialService. events may be nil.
func NewSocialService(follows repository.FollowRepository, users repository.UserRepository, events EventPublisher) *SocialService {
	return &SocialService{follows: follows, users: users, events: events}
}

func recordMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.SocialGraphMutations.WithLabelValues(operation, outcome).Inc()
}

// Follow makes viewerID follow the user called username. Following someone twice
// returns the existing edge with created=false.
func (s *SocialService) Follow(ctx context.Context, viewerID uint, username string) (edge *models.FollowEdge, created bool, err error) {
	defer func() { recordMutation("follow", err) }()

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, false, models.NewValidationError("User " + models.NormalizeUsername(username) + " does not exist")
		}
		return nil, false, err
	}
	if target.ID == viewerID {
		return nil, false, models.NewValidationError("You cannot follow yourself")
	}

	edge, created, err = s.follows.Follow(ctx, viewerID, target.ID)
	if err != nil {
		return nil, false, err
	}
	edge.Followed = target

	if created {
		e := notifications.NewEvent(notifications.EventFollowCreated, viewerID, "")
		if viewer, uerr := s.users.GetByID(ctx, viewerID); uerr == nil {
			e.ActorName = viewer.Username
		}
		e.EdgeID = &edge.ID
		s.publish(ctx, target.ID, e)
	}
	return edge, created, nil
}

// Unfollow removes viewerID's edge with id edgeID. Missing edges, and edges
// owned by someone else, are left alone and reported as success.
func (s *SocialService) Unfollow(ctx context.Context, viewerID, edgeID uint) (err error) {
	defer func() { recordMutation("unfollow", err) }()
	_, err = s.follows.DeleteForFollower(ctx, edgeID, viewerID)
	return err
}

// ToggleBlock flips the block flag on an edge that points at viewerID.
// Returns NotFound when edgeID does not exist or viewerID is not the followed party.
func (s *SocialService) ToggleBlock(ctx context.Context, viewerID, edgeID uint) (edge *models.FollowEdge, err error) {
	defer func() { recordMutation("toggle_block", err) }()
	return s.follows.ToggleBlockForFollowed(ctx, edgeID, viewerID)
}

// FollowedSet returns the ids of the users userID follows.
func (s *SocialService) FollowedSet(ctx context.Context, userID uint) ([]uint, error) {
	return s.follows.FollowedIDs(ctx, userID)
}

// BlockedCombined returns the ids userID has blocked together with the ids that blocked userID.
func (s *SocialService) BlockedCombined(ctx context.Context, userID uint) ([]uint, error) {
	return s.follows.BlockedCombinedIDs(ctx, userID)
}

// Followings lists the edges where viewerID is the follower.
func (s *SocialService) Followings(ctx context.Context, viewerID uint) ([]models.FollowEdge, error) {
	return s.follows.Followings(ctx, viewerID)
}

// Followers lists the edges where viewerID is followed.
func (s *SocialService) Followers(ctx context.Context, viewerID uint) ([]models.FollowEdge, error) {
	return s.follows.Followers(ctx, viewerID)
}

// Profile returns the public profile of username with follow counts.
func (s *SocialService) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	followers, following, err := s.follows.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, FollowersCount: followers, FollowingCount: following}, nil
}

func (s *SocialService) publish(ctx context.Context, userID uint, e notifications.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, userID, e); err != nil {
		middleware.Logger.WarnContext(ctx, "notification publish failed",
			slog.String("type", string(e.Type)), slog.String("error", err.Error()))
	}
}
