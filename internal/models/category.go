package models

import (
	"strings"
	"time"
)

const (
	CategoryMeal       = "meal"
	CategoryIngredient = "ingredient"
	CategoryCourse     = "course"
	CategoryDish       = "dish"
	CategoryDietary    = "dietary"
	CategoryCuisine    = "cuisine"
)

// CategoryTypes is also the display order on the categories page.
var CategoryTypes = []string{CategoryMeal, CategoryCourse, CategoryDish, CategoryIngredient, CategoryDietary, CategoryCuisine}

const DefaultImage = "https://images.unsplash.com/photo-1504674900247-0877df9cc836"

var defaultImages = map[string]map[string]string{
	CategoryCuisine: {
		"american": "https://images.unsplash.com/photo-1551782450-a2132b4ba21d",
		"british":  "https://images.unsplash.com/photo-1542803293-59c8b2b0c37c",
		"chinese":  "https://images.unsplash.com/photo-1583475020831-fb4f737b000d",
		"french":   "https://images.unsplash.com/photo-1608855238293-a8853e7f7c98",
		"greek":    "https://images.unsplash.com/photo-1559598467-f8b76c8155d0",
		"indian":   "https://images.unsplash.com/photo-1585937421612-70a008356fbe",
		"italian":  "https://images.unsplash.com/photo-1598866594230-a7c12756260f",
		"japanese": "https://images.unsplash.com/photo-1579584425555-c3ce17fd4351",
		"mexican":  "https://images.unsplash.com/photo-1565299585323-38d6b0865b47",
	},
	CategoryMeal: {
		"breakfast": "https://images.unsplash.com/photo-1533089860892-a7c6f0a88666",
		"lunch":     "https://images.unsplash.com/photo-1547496502-affa22d38842",
		"dinner":    "https://images.unsplash.com/photo-1576867757603-05b134ebc379",
		"dessert":   "https://images.unsplash.com/photo-1488477181946-6428a0291777",
		"snack":     "https://images.unsplash.com/photo-1621939514649-280e2ee25f60",
	},
	CategoryDietary: {
		"vegetarian":  "https://images.unsplash.com/photo-1540420773420-3366772f4999",
		"vegan":       "https://images.unsplash.com/photo-1512621776951-a57141f2eefd",
		"gluten-free": "https://images.unsplash.com/photo-1612549225454-0815b4778d08",
		"keto":        "https://images.unsplash.com/photo-1490645935967-10de6ba17061",
	},
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Type      string    `gorm:"size:20;not null;default:dish;index" json:"type"`
	ImageURL  string    `gorm:"size:500" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RecipeCount int64 `gorm:"-" json:"recipe_count"`
}

// DisplayImage returns the stored image or the static default for the
// category's type and name.
func (c *Category) DisplayImage() string {
	if c.ImageURL != "" {
		return c.ImageURL
	}
	if byName, ok := defaultImages[c.Type]; ok {
		if img, ok := byName[strings.ToLower(c.Name)]; ok {
			return img
		}
	}
	return DefaultImage
}

func ValidCategoryType(t string) bool {
	for _, v := range CategoryTypes {
		if v == t {
			return true
		}
	}
	return false
}
