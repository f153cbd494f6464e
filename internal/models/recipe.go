package models

import (
	"time"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Recipe struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Title        string      `gorm:"size:200;not null;index" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Ingredients  []string    `gorm:"serializer:json;type:text;not null" json:"ingredients"` // ordered lines
	Instructions string      `gorm:"type:text;not null" json:"instructions"`
	CookingTime  int         `gorm:"not null;default:0" json:"cooking_time"` // minutes
	Servings     int         `gorm:"not null;default:0" json:"servings"`
	Difficulty   string      `gorm:"size:10;not null;default:medium;index" json:"difficulty"`
	Calories     int         `gorm:"not null;default:0" json:"calories"`
	ImageURL     string      `gorm:"size:500" json:"image_url"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Categories   []Category  `gorm:"many2many:recipe_categories;" json:"categories"`
	Tags         []RecipeTag `gorm:"constraint:OnDelete:CASCADE;" json:"tags"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// Computed per query, not persisted.
	IsSaved   bool  `gorm:"-" json:"is_saved"`
	SaveCount int64 `gorm:"-" json:"save_count"`
}

// RecipeTag is one free-form tag on a recipe, lower-cased.
type RecipeTag struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RecipeID uint   `gorm:"not null;uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	Tag      string `gorm:"size:50;not null;uniqueIndex:idx_recipe_tag;index" json:"tag"`
}

// RecipeCategory is the join row between recipes and categories.
type RecipeCategory struct {
	RecipeID   uint      `gorm:"primaryKey" json:"recipe_id"`
	CategoryID uint      `gorm:"primaryKey" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TagNames flattens the tag rows.
func (r *Recipe) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// CategoryIDs flattens the loaded categories, for pre-filling edit forms.
func (r *Recipe) CategoryIDs() []uint {
	ids := make([]uint, 0, len(r.Categories))
	for _, c := range r.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func (r *Recipe) HasCategory(id uint) bool {
	for _, c := range r.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// DisplayImage returns the recipe image, falling back to its first category's image.
func (r *Recipe) DisplayImage() string {
	if r.ImageURL != "" {
		return r.ImageURL
	}
	if len(r.Categories) > 0 {
		return r.Categories[0].DisplayImage()
	}
	return DefaultImage
}

func ValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}
