package store

import (
	"context"

	"recipebox/internal/apperror"
	"recipebox/internal/models"

	"gorm.io/gorm/clause"
)

// SaveRecipe bookmarks a recipe. Saving twice is a no-op.
func (s *Store) SaveRecipe(ctx context.Context, userID, recipeID uint) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	save := models.SavedRecipe{UserID: userID, RecipeID: recipeID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&save).Error
	return dbError(err, "")
}

// UnsaveRecipe removes a bookmark. Removing a missing bookmark is a no-op.
func (s *Store) UnsaveRecipe(ctx context.Context, userID, recipeID uint) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.SavedRecipe{}).Error
	return dbError(err, "")
}

// ToggleSave flips the bookmark and returns the new state.
func (s *Store) ToggleSave(ctx context.Context, userID, recipeID uint) (bool, error) {
	saved, err := s.IsSaved(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.UnsaveRecipe(ctx, userID, recipeID)
	}
	return true, s.SaveRecipe(ctx, userID, recipeID)
}

func (s *Store) IsSaved(ctx context.Context, userID, recipeID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	if err != nil {
		return false, dbError(err, "")
	}
	return n > 0, nil
}

func (s *Store) SaveCount(ctx context.Context, recipeID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).Where("recipe_id = ?", recipeID).Count(&n).Error; err != nil {
		return 0, dbError(err, "")
	}
	return n, nil
}

func (s *Store) recipeExists(ctx context.Context, recipeID uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return dbError(err, "")
	}
	if n == 0 {
		return apperror.NewNotFoundError("Recipe not found", nil)
	}
	return nil
}
