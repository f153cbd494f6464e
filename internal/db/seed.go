package db

import (
	"recipebox/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Beef", Type: models.CategoryIngredient},
	{Name: "Chicken", Type: models.CategoryIngredient},
	{Name: "Lamb", Type: models.CategoryIngredient},
	{Name: "Pork", Type: models.CategoryIngredient},
	{Name: "Goat", Type: models.CategoryIngredient},
	{Name: "Seafood", Type: models.CategoryIngredient},
	{Name: "Pasta", Type: models.CategoryDish},
	{Name: "Miscellaneous", Type: models.CategoryDish},
	{Name: "Side Dish", Type: models.CategoryCourse},
	{Name: "Starter", Type: models.CategoryCourse},
	{Name: "Breakfast", Type: models.CategoryMeal},
	{Name: "Dessert", Type: models.CategoryMeal},
	{Name: "Vegan", Type: models.CategoryDietary},
	{Name: "Vegetarian", Type: models.CategoryDietary},
	{Name: "Italian", Type: models.CategoryCuisine},
	{Name: "Mexican", Type: models.CategoryCuisine},
	{Name: "Indian", Type: models.CategoryCuisine},
	{Name: "Japanese", Type: models.CategoryCuisine},
}

// SeedCategories inserts the default categories when the table is empty.
func SeedCategories(gdb *gorm.DB, log logrus.FieldLogger) error {
	var count int64
	if err := gdb.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug("categories already seeded, skipping")
		return nil
	}

	categories := make([]models.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	if err := gdb.Create(&categories).Error; err != nil {
		return err
	}
	log.WithField("count", len(categories)).Info("initial categories created")
	return nil
}
