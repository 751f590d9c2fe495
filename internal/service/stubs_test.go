package service

import (
	"context"
	"errors"
	"sync"

	"litreview/internal/models"
	"litreview/internal/notifications"
	"litreview/internal/repository"
)

type followRepoStub struct {
	followFn                 func(context.Context, uint, uint) (*models.FollowEdge, bool, error)
	getByIDFn                func(context.Context, uint) (*models.FollowEdge, error)
	deleteForFollowerFn      func(context.Context, uint, uint) (int64, error)
	toggleBlockForFollowedFn func(context.Context, uint, uint) (*models.FollowEdge, error)
	followedIDsFn            func(context.Context, uint) ([]uint, error)
	blockedCombinedIDsFn     func(context.Context, uint) ([]uint, error)
	followingsFn             func(context.Context, uint) ([]models.FollowEdge, error)
	followersFn              func(context.Context, uint) ([]models.FollowEdge, error)
	countsFn                 func(context.Context, uint) (int64, int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followedID uint) (*models.FollowEdge, bool, error) {
	return s.followFn(ctx, followerID, followedID)
}
func (s *followRepoStub) GetByID(ctx context.Context, id uint) (*models.FollowEdge, error) {
	return s.getByIDFn(ctx, id)
}
func (s *followRepoStub) DeleteForFollower(ctx context.Context, edgeID, followerID uint) (int64, error) {
	return s.deleteForFollowerFn(ctx, edgeID, followerID)
}
func (s *followRepoStub) ToggleBlockForFollowed(ctx context.Context, edgeID, followedID uint) (*models.FollowEdge, error) {
	return s.toggleBlockForFollowedFn(ctx, edgeID, followedID)
}
func (s *followRepoStub) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followedIDsFn(ctx, userID)
}
func (s *followRepoStub) BlockedCombinedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.blockedCombinedIDsFn(ctx, userID)
}
func (s *followRepoStub) Followings(ctx context.Context, userID uint) ([]models.FollowEdge, error) {
	return s.followingsFn(ctx, userID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.FollowEdge, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	return s.countsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn: func(_ context.Context, followerID, followedID uint) (*models.FollowEdge, bool, error) {
			return &models.FollowEdge{ID: 1, FollowerID: followerID, FollowedID: followedID}, true, nil
		},
		getByIDFn:           func(context.Context, uint) (*models.FollowEdge, error) { return &models.FollowEdge{}, nil },
		deleteForFollowerFn: func(context.Context, uint, uint) (int64, error) { return 0, nil },
		toggleBlockForFollowedFn: func(context.Context, uint, uint) (*models.FollowEdge, error) {
			return &models.FollowEdge{}, nil
		},
		followedIDsFn:        func(context.Context, uint) ([]uint, error) { return nil, nil },
		blockedCombinedIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		followingsFn:         func(context.Context, uint) ([]models.FollowEdge, error) { return nil, nil },
		followersFn:          func(context.Context, uint) ([]models.FollowEdge, error) { return nil, nil },
		countsFn:             func(context.Context, uint) (int64, int64, error) { return 0, 0, nil },
	}
}

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	getCredentialsFn func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateFn         func(context.Context, *models.User) error
	listFn           func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetCredentials(ctx context.Context, username string) (*models.User, error) {
	return s.getCredentialsFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:        func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn:  func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getCredentialsFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:         func(context.Context, *models.User) error { return nil },
		updateFn:         func(context.Context, *models.User) error { return nil },
		listFn:           func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type feedRepoStub struct {
	countFn func(context.Context, repository.FeedScope, uint) (int64, error)
	pageFn  func(context.Context, repository.FeedScope, uint, int, int) ([]models.FeedItem, error)
}

func (s *feedRepoStub) Count(ctx context.Context, scope repository.FeedScope, viewerID uint) (int64, error) {
	return s.countFn(ctx, scope, viewerID)
}
func (s *feedRepoStub) Page(ctx context.Context, scope repository.FeedScope, viewerID uint, limit, offset int) ([]models.FeedItem, error) {
	return s.pageFn(ctx, scope, viewerID, limit, offset)
}

// eventRecorder captures published notifications.
type eventRecorder struct {
	mu     sync.Mutex
	events map[uint][]notifications.Event
	err    error
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(map[uint][]notifications.Event)}
}

func (r *eventRecorder) PublishEvent(_ context.Context, userID uint, e notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events[userID] = append(r.events[userID], e)
	return nil
}

func (r *eventRecorder) For(userID uint) []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Event(nil), r.events[userID]...)
}

func (r *eventRecorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evs := range r.events {
		n += len(evs)
	}
	return n
}

var errBoom = errors.New("boom")
