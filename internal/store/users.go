package store

import (
	"context"
	"errors"

	"recipebox/internal/apperror"
	"recipebox/internal/models"
	"recipebox/internal/utils"
	"recipebox/internal/validation"

	"gorm.io/gorm"
)

// NewUser is the signup input.
type NewUser struct {
	Username     string `json:"username" validate:"required,username"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,strongpwd,maxbytes=72"`
	Bio          string `json:"bio" validate:"max=500"`
	ProfileImage string `json:"profile_image" validate:"omitempty,url,max=500"`
}

// ProfileUpdate is the editable part of a user. When NewPassword is set the
// password changes together with the profile, after CurrentPassword is
// verified.
type ProfileUpdate struct {
	Username        string `json:"username" validate:"required,username"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Bio             string `json:"bio" validate:"max=500"`
	ProfileImage    string `json:"profile_image" validate:"omitempty,url,max=500"`
	CurrentPassword string `json:"-" validate:"-"`
	NewPassword     string `json:"-" validate:"-"`
}

type passwordInput struct {
	Password string `json:"password" validate:"required,strongpwd,maxbytes=72"`
}

// UserFilter selects users for the directory and suggestions.
type UserFilter struct {
	ExcludeID uint
	ViewerID  uint
	Limit     int
	Offset    int
}

// CreateUser registers a user. Username and email are unique regardless of
// case; the returned user has no password hash.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = models.NormalizeIdentity(in.Username)
	in.Email = models.NormalizeIdentity(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}
	if err := s.ensureIdentityFree(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.NewInternalError("Could not hash password", err)
	}
	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		Password:     hash,
		Bio:          in.Bio,
		ProfileImage: in.ProfileImage,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, dbError(err, "")
	}
	user.Password = ""
	return &user, nil
}

// ensureIdentityFree fails when another user already owns username or email.
func (s *Store) ensureIdentityFree(ctx context.Context, excludeID uint, username, email string) error {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, excludeID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return dbError(err, "")
	}
	if existing.Username == username {
		return apperror.NewValidationError("Username is already taken", nil)
	}
	return apperror.NewValidationError("Email is already registered", nil)
}

// AuthenticateUser checks credentials. login may be the username or the email.
func (s *Store) AuthenticateUser(ctx context.Context, login, password string) (*models.User, error) {
	login = models.NormalizeIdentity(login)
	if login == "" || password == "" {
		return nil, apperror.NewAuthError("Invalid username/email or password", nil)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewAuthError("Invalid username/email or password", nil)
	}
	if err != nil {
		return nil, dbError(err, "")
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperror.NewAuthError("Invalid username/email or password", nil)
	}
	user.Password = ""
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, dbError(err, "User not found")
	}
	user.Password = ""
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", models.NormalizeIdentity(username)).First(&user).Error
	if err != nil {
		return nil, dbError(err, "User not found")
	}
	user.Password = ""
	return &user, nil
}

// UpdateProfile changes username, email, bio and image with the same
// uniqueness rules as signup. Every input is checked before anything is
// written, and the profile and password are stored in one transaction.
func (s *Store) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	in.Username = models.NormalizeIdentity(in.Username)
	in.Email = models.NormalizeIdentity(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}
	if in.NewPassword != "" {
		if err := validation.Struct(passwordInput{Password: in.NewPassword}); err != nil {
			return nil, apperror.NewValidationError(validation.Message(err), err)
		}
	}
	user, err := s.verifyPassword(ctx, userID, in.CurrentPassword, in.NewPassword != "")
	if err != nil {
		return nil, err
	}
	if err := s.ensureIdentityFree(ctx, userID, in.Username, in.Email); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{ID: userID}).Updates(map[string]any{
			"username":      in.Username,
			"email":         in.Email,
			"bio":           in.Bio,
			"profile_image": in.ProfileImage,
		}).Error
		if err != nil {
			return dbError(err, "")
		}
		if in.NewPassword == "" {
			return nil
		}
		return s.setPassword(ctx, tx, userID, in.NewPassword)
	})
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Email = in.Email
	user.Bio = in.Bio
	user.ProfileImage = in.ProfileImage
	return user, nil
}

// ChangePassword verifies the current password before storing the new one.
// Remember-me tokens are revoked.
func (s *Store) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if _, err := s.verifyPassword(ctx, userID, current, true); err != nil {
		return err
	}
	return s.setPassword(ctx, s.db, userID, next)
}

// verifyPassword loads the user and, when check is set, compares current with
// the stored hash. The returned user has no password hash.
func (s *Store) verifyPassword(ctx context.Context, userID uint, current string, check bool) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, dbError(err, "User not found")
	}
	if check && !utils.CheckPasswordHash(current, user.Password) {
		return nil, apperror.NewAuthError("Current password is incorrect", nil)
	}
	user.Password = ""
	return &user, nil
}

func (s *Store) setPassword(ctx context.Context, tx *gorm.DB, userID uint, password string) error {
	if err := validation.Struct(passwordInput{Password: password}); err != nil {
		return apperror.NewValidationError(validation.Message(err), err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperror.NewInternalError("Could not hash password", err)
	}
	err = tx.WithContext(ctx).Model(&models.User{ID: userID}).Updates(map[string]any{
		"password":                  hash,
		"remember_token":            "",
		"remember_token_expires_at": nil,
		"reset_token":               "",
		"reset_token_expires_at":    nil,
	}).Error
	return dbError(err, "")
}

// ListUsers returns users newest first, annotated with recipe and follower
// counts and whether the viewer follows them.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Order("created_at DESC, id DESC")
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, dbError(err, "")
	}
	if err := s.annotateUsers(ctx, users); err != nil {
		return nil, err
	}
	if err := s.AnnotateFollowing(ctx, f.ViewerID, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context, excludeID uint) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.User{})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, dbError(err, "")
	}
	return n, nil
}

// PopularUsers returns the most followed users with their counts. The result
// does not depend on the viewer so it can be cached.
func (s *Store) PopularUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*").
		Joins("LEFT JOIN user_follows ON user_follows.following_id = users.id").
		Group("users.id").
		Order("COUNT(user_follows.id) DESC, users.created_at DESC, users.id DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	if err := s.annotateUsers(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

type idCount struct {
	ID    uint
	Count int64
}

func (s *Store) annotateUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
		users[i].Password = ""
	}

	var recipes, followers []idCount
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("user_id AS id, COUNT(*) AS count").
		Where("user_id IN ?", ids).Group("user_id").
		Scan(&recipes).Error
	if err != nil {
		return dbError(err, "")
	}
	err = s.db.WithContext(ctx).Model(&models.UserFollow{}).
		Select("following_id AS id, COUNT(*) AS count").
		Where("following_id IN ?", ids).Group("following_id").
		Scan(&followers).Error
	if err != nil {
		return dbError(err, "")
	}

	recipeCounts := toCountMap(recipes)
	followerCounts := toCountMap(followers)
	for i := range users {
		users[i].RecipeCount = recipeCounts[users[i].ID]
		users[i].FollowerCount = followerCounts[users[i].ID]
	}
	return nil
}

// AnnotateFollowing sets IsFollowing on each user for viewerID.
func (s *Store) AnnotateFollowing(ctx context.Context, viewerID uint, users []models.User) error {
	for i := range users {
		users[i].IsFollowing = false
	}
	if viewerID == 0 || len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var followed []uint
	err := s.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND following_id IN ?", viewerID, ids).
		Pluck("following_id", &followed).Error
	if err != nil {
		return dbError(err, "")
	}
	set := make(map[uint]bool, len(followed))
	for _, id := range followed {
		set[id] = true
	}
	for i := range users {
		users[i].IsFollowing = set[users[i].ID]
	}
	return nil
}

func toCountMap(rows []idCount) map[uint]int64 {
	m := make(map[uint]int64, len(rows))
	for _, r := range rows {
		m[r.ID] = r.Count
	}
	return m
}
