package repository

import (
	"context"
	"errors"

	"litreview/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository persists directed follow edges and answers visibility questions.
type FollowRepository interface {
	// Follow inserts the (followerID, followedID) edge unless it exists and
	// returns the stored edge; created reports whether this call inserted it.
	Follow(ctx context.Context, followerID, followedID uint) (edge *models.FollowEdge, created bool, err error)
	GetByID(ctx context.Context, id uint) (*models.FollowEdge, error)
	// DeleteForFollower removes the edge only if followerID owns it.
	DeleteForFollower(ctx context.Context, edgeID, followerID uint) (int64, error)
	// ToggleBlockForFollowed flips Blocked on the edge whose followed party is followedID.
	ToggleBlockForFollowed(ctx context.Context, edgeID, followedID uint) (*models.FollowEdge, error)
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
	BlockedCombinedIDs(ctx context.Context, userID uint) ([]uint, error)
	Followings(ctx context.Context, userID uint) ([]models.FollowEdge, error)
	Followers(ctx context.Context, userID uint) ([]models.FollowEdge, error)
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) (*models.FollowEdge, bool, error) {
	edge := models.FollowEdge{FollowerID: followerID, FollowedID: followedID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
			DoNothing: true,
		}).
		Create(&edge)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			existing, err := r.pair(ctx, followerID, followedID)
			return existing, false, err
		}
		return nil, false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 1 && edge.ID != 0 {
		return &edge, true, nil
	}

	existing, err := r.pair(ctx, followerID, followedID)
	return existing, false, err
}

func (r *followRepository) pair(ctx context.Context, followerID, followedID uint) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&edge).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *followRepository) GetByID(ctx context.Context, id uint) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	if err := r.db.WithContext(ctx).Preload("Follower").Preload("Followed").First(&edge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Follow", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *followRepository) DeleteForFollower(ctx context.Context, edgeID, followerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND follower_id = ?", edgeID, followerID).
		Delete(&models.FollowEdge{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *followRepository) ToggleBlockForFollowed(ctx context.Context, edgeID, followedID uint) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND followed_id = ?", edgeID, followedID).First(&edge).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FollowEdge{}).
			Where("id = ?", edge.ID).
			Update("blocked", gorm.Expr("NOT blocked")).Error; err != nil {
			return err
		}
		return tx.Preload("Follower").First(&edge, edge.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Follow", edgeID)
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *followRepository) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ?", userID).
		Order("followed_id ASC").
		Pluck("followed_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// BlockedCombinedIDs returns users userID has blocked plus users who have blocked userID.
func (r *followRepository) BlockedCombinedIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).
		Raw(blockedCombinedSQL+" ORDER BY 1", map[string]interface{}{"viewer": userID, "blocked": true}).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Followings(ctx context.Context, userID uint) ([]models.FollowEdge, error) {
	var edges []models.FollowEdge
	if err := readDB(r.db).WithContext(ctx).
		Where("follower_id = ?", userID).
		Preload("Followed").
		Order("created_at DESC, id DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.FollowEdge, error) {
	var edges []models.FollowEdge
	if err := readDB(r.db).WithContext(ctx).
		Where("followed_id = ?", userID).
		Preload("Follower").
		Order("created_at DESC, id DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	db := readDB(r.db).WithContext(ctx)
	var followers, following int64
	if err := db.Model(&models.FollowEdge{}).Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := db.Model(&models.FollowEdge{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}
