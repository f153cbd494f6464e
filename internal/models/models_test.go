package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryDisplayImage(t *testing.T) {
	custom := Category{Name: "Pasta", Type: CategoryDish, ImageURL: "https://example.com/pasta.jpg"}
	assert.Equal(t, "https://example.com/pasta.jpg", custom.DisplayImage())

	vegan := Category{Name: "Vegan", Type: CategoryDietary}
	assert.Equal(t, "https://images.unsplash.com/photo-1512621776951-a57141f2eefd", vegan.DisplayImage())

	unknown := Category{Name: "Goat", Type: CategoryIngredient}
	assert.Equal(t, DefaultImage, unknown.DisplayImage())
}

func TestRecipeHelpers(t *testing.T) {
	r := Recipe{
		Tags:       []RecipeTag{{Tag: "soup"}, {Tag: "quick"}},
		Categories: []Category{{ID: 3, Name: "Breakfast", Type: CategoryMeal}},
	}
	assert.Equal(t, []string{"soup", "quick"}, r.TagNames())
	assert.Equal(t, []uint{3}, r.CategoryIDs())
	assert.True(t, r.HasCategory(3))
	assert.False(t, r.HasCategory(4))
	assert.Equal(t, "https://images.unsplash.com/photo-1533089860892-a7c6f0a88666", r.DisplayImage())

	r.ImageURL = "https://example.com/soup.jpg"
	assert.Equal(t, "https://example.com/soup.jpg", r.DisplayImage())
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidDifficulty("easy"))
	assert.False(t, ValidDifficulty("Easy"))
	assert.True(t, ValidCategoryType(CategoryCuisine))
	assert.False(t, ValidCategoryType("diet"))
	assert.Equal(t, "alice@example.com", NormalizeIdentity("  Alice@Example.COM "))
}
