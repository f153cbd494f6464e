package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Username               string     `gorm:"size:30;uniqueIndex;not null" json:"username"` // stored lower-cased
	Email                  string     `gorm:"size:255;uniqueIndex;not null" json:"email"`   // stored lower-cased
	Password               string     `gorm:"not null" json:"-"`                            // bcrypt hash
	Bio                    string     `gorm:"size:500" json:"bio"`
	ProfileImage           string     `gorm:"size:500" json:"profile_image"`
	RememberToken          string     `gorm:"size:64;index" json:"-"`
	RememberTokenExpiresAt *time.Time `json:"-"`
	ResetToken             string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt    *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	// Computed per query, not persisted.
	RecipeCount   int64 `gorm:"-" json:"recipe_count"`
	FollowerCount int64 `gorm:"-" json:"follower_count"`
	IsFollowing   bool  `gorm:"-" json:"is_following"`
}

// BeforeSave keeps username and email lower-cased so the unique indexes are
// case-insensitive on every backend.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Username = NormalizeIdentity(u.Username)
	u.Email = NormalizeIdentity(u.Email)
	return nil
}

// NormalizeIdentity is the canonical form of usernames and emails.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Avatar returns the profile image or a generated placeholder.
func (u *User) Avatar() string {
	if u.ProfileImage != "" {
		return u.ProfileImage
	}
	return "https://ui-avatars.com/api/?name=" + u.Username + "&background=random"
}
