package store

import (
	"context"

	"recipebox/internal/apperror"
	"recipebox/internal/models"

	"gorm.io/gorm/clause"
)

// Follow adds the edge followerID -> targetID. Following twice is a no-op,
// following yourself is rejected.
func (s *Store) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return apperror.NewValidationError("You cannot follow yourself", nil)
	}
	if err := s.userExists(ctx, targetID); err != nil {
		return err
	}
	edge := models.UserFollow{FollowerID: followerID, FollowingID: targetID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&edge).Error
	return dbError(err, "")
}

// Unfollow removes the edge if present.
func (s *Store) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if err := s.userExists(ctx, targetID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Delete(&models.UserFollow{}).Error
	return dbError(err, "")
}

// ToggleFollow flips the edge and returns whether followerID now follows targetID.
func (s *Store) ToggleFollow(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == targetID {
		return false, apperror.NewValidationError("You cannot follow yourself", nil)
	}
	following, err := s.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		return false, s.Unfollow(ctx, followerID, targetID)
	}
	return true, s.Follow(ctx, followerID, targetID)
}

func (s *Store) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == 0 || followerID == targetID {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, targetID).
		Count(&n).Error
	if err != nil {
		return false, dbError(err, "")
	}
	return n > 0, nil
}

func (s *Store) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserFollow{}).Where("following_id = ?", userID).Count(&n).Error; err != nil {
		return 0, dbError(err, "")
	}
	return n, nil
}

func (s *Store) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserFollow{}).Where("follower_id = ?", userID).Count(&n).Error; err != nil {
		return 0, dbError(err, "")
	}
	return n, nil
}

func (s *Store) userExists(ctx context.Context, userID uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return dbError(err, "")
	}
	if n == 0 {
		return apperror.NewNotFoundError("User not found", nil)
	}
	return nil
}
