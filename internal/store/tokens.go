package store

import (
	"context"
	"errors"
	"time"

	"recipebox/internal/apperror"
	"recipebox/internal/models"
	"recipebox/internal/utils"

	"gorm.io/gorm"
)

// IssueRememberToken stores a fresh remember-me token on the user.
func (s *Store) IssueRememberToken(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	token := utils.NewToken()
	expires := time.Now().Add(ttl)
	res := s.db.WithContext(ctx).Model(&models.User{ID: userID}).Updates(map[string]any{
		"remember_token":            token,
		"remember_token_expires_at": expires,
	})
	if res.Error != nil {
		return "", dbError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return "", apperror.NewNotFoundError("User not found", nil)
	}
	return token, nil
}

// UserByRememberToken resolves an unexpired remember-me token.
func (s *Store) UserByRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.NewNotFoundError("Invalid or expired token", nil)
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("remember_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Invalid or expired token", err)
	}
	if err != nil {
		return nil, dbError(err, "")
	}
	if user.RememberTokenExpiresAt == nil || !user.RememberTokenExpiresAt.After(time.Now()) {
		return nil, apperror.NewNotFoundError("Invalid or expired token", nil)
	}
	user.Password = ""
	return &user, nil
}

func (s *Store) ClearRememberToken(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.User{ID: userID}).Updates(map[string]any{
		"remember_token":            "",
		"remember_token_expires_at": nil,
	}).Error
	return dbError(err, "")
}

// IssueResetToken creates a password reset token for the account owning email.
func (s *Store) IssueResetToken(ctx context.Context, email string, ttl time.Duration) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeIdentity(email)).First(&user).Error
	if err != nil {
		return nil, "", dbError(err, "No account with that email")
	}
	token := utils.NewToken()
	err = s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Updates(map[string]any{
		"reset_token":            token,
		"reset_token_expires_at": time.Now().Add(ttl),
	}).Error
	if err != nil {
		return nil, "", dbError(err, "")
	}
	user.Password = ""
	return &user, token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Store) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return apperror.NewNotFoundError("Invalid or expired reset link", nil)
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Invalid or expired reset link", err)
	}
	if err != nil {
		return dbError(err, "")
	}
	if user.ResetTokenExpiresAt == nil || !user.ResetTokenExpiresAt.After(time.Now()) {
		return apperror.NewNotFoundError("Invalid or expired reset link", nil)
	}
	return s.setPassword(ctx, s.db, user.ID, password)
}
