package store

import (
	"context"
	"sort"

	"recipebox/internal/models"
)

// CategoryGroup is one section of the categories page.
type CategoryGroup struct {
	Type       string            `json:"type"`
	Categories []models.Category `json:"categories"`
}

// ListCategories returns every category with its recipe count, by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, dbError(err, "")
	}
	if len(categories) == 0 {
		return categories, nil
	}

	var counts []idCount
	err := s.db.WithContext(ctx).Model(&models.RecipeCategory{}).
		Select("category_id AS id, COUNT(*) AS count").
		Group("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	countMap := toCountMap(counts)
	for i := range categories {
		categories[i].RecipeCount = countMap[categories[i].ID]
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, dbError(err, "Category not found")
	}
	return &c, nil
}

// GroupedCategories groups categories by type in display order. Empty groups
// are left out; unknown types go last.
func (s *Store) GroupedCategories(ctx context.Context) ([]CategoryGroup, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byType := map[string][]models.Category{}
	for _, c := range categories {
		byType[c.Type] = append(byType[c.Type], c)
	}

	groups := make([]CategoryGroup, 0, len(byType))
	for _, t := range models.CategoryTypes {
		if cs := byType[t]; len(cs) > 0 {
			groups = append(groups, CategoryGroup{Type: t, Categories: cs})
			delete(byType, t)
		}
	}
	rest := make([]string, 0, len(byType))
	for t := range byType {
		rest = append(rest, t)
	}
	sort.Strings(rest)
	for _, t := range rest {
		groups = append(groups, CategoryGroup{Type: t, Categories: byType[t]})
	}
	return groups, nil
}
