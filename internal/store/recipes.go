package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"recipebox/internal/apperror"
	"recipebox/internal/models"
	"recipebox/internal/utils"
	"recipebox/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort orders accepted by RecipeFilter.Order.
const (
	OrderNewest   = "newest"
	OrderOldest   = "oldest"
	OrderTitle    = "title"
	OrderCalories = "calories"
	OrderPopular  = "popular"
)

// RecipeInput holds the editable recipe fields.
type RecipeInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Ingredients  []string `json:"ingredients" validate:"min=1,max=100,dive,max=300"`
	Instructions string   `json:"instructions" validate:"required"`
	CookingTime  int      `json:"cooking_time" validate:"gte=0,lte=10080"`
	Servings     int      `json:"servings" validate:"gte=0,lte=1000"`
	Difficulty   string   `json:"difficulty" validate:"required,difficulty"`
	Calories     int      `json:"calories" validate:"gte=0"`
	ImageURL     string   `json:"image_url" validate:"omitempty,url,max=500"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50"`
}

func (in *RecipeInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Instructions = strings.TrimSpace(in.Instructions)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyMedium
	}

	ingredients := make([]string, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line = strings.TrimSpace(line); line != "" {
			ingredients = append(ingredients, line)
		}
	}
	in.Ingredients = ingredients
	in.Tags = utils.SplitTags(strings.Join(in.Tags, ","))
}

func (in *RecipeInput) validate() error {
	in.normalize()
	if len(in.Ingredients) == 0 {
		return apperror.NewValidationError("At least one ingredient is required", nil)
	}
	if err := validation.Struct(in); err != nil {
		return apperror.NewValidationError(validation.Message(err), err)
	}
	return nil
}

func (in *RecipeInput) apply(r *models.Recipe) {
	r.Title = in.Title
	r.Description = in.Description
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	r.CookingTime = in.CookingTime
	r.Servings = in.Servings
	r.Difficulty = in.Difficulty
	r.Calories = in.Calories
	r.ImageURL = in.ImageURL
}

// RecipeFilter selects and orders recipes. Zero values mean no constraint.
type RecipeFilter struct {
	Search     string // substring of title or description, case-insensitive
	CategoryID uint
	Difficulty string
	Tags       []string // any of
	AuthorID   uint
	SavedBy    uint   // only recipes this user saved
	Order      string // newest (default), oldest, title, calories, popular
	Limit      int
	Offset     int
	ViewerID   uint // annotates IsSaved; 0 is anonymous
}

// CreateRecipe stores a recipe with its tags and categories in one transaction.
func (s *Store) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput, categoryIDs []uint) (*models.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	recipe := models.Recipe{UserID: authorID}
	in.apply(&recipe)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, in.Tags); err != nil {
			return err
		}
		return replaceCategories(tx, recipe.ID, categoryIDs)
	})
	if err != nil {
		return nil, dbError(err, "")
	}
	return s.GetRecipe(ctx, recipe.ID, authorID)
}

// UpdateRecipe overwrites the recipe fields and replaces its tags and
// category set. Only the author may update.
func (s *Store) UpdateRecipe(ctx context.Context, recipeID, requesterID uint, in RecipeInput, categoryIDs []uint) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, recipeID, requesterID, "You can only edit your own recipes")
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	in.apply(recipe)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, in.Tags); err != nil {
			return err
		}
		return replaceCategories(tx, recipe.ID, categoryIDs)
	})
	if err != nil {
		return nil, dbError(err, "")
	}
	return s.GetRecipe(ctx, recipe.ID, requesterID)
}

// DeleteRecipe removes the recipe and every row pointing at it. Only the
// author may delete.
func (s *Store) DeleteRecipe(ctx context.Context, recipeID, requesterID uint) error {
	if _, err := s.ownedRecipe(ctx, recipeID, requesterID, "You can only delete your own recipes"); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.SavedRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, recipeID).Error
	})
	return dbError(err, "")
}

func (s *Store) ownedRecipe(ctx context.Context, recipeID, requesterID uint, denied string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, dbError(err, "Recipe not found")
	}
	if recipe.UserID != requesterID {
		return nil, apperror.NewAuthorizationError(denied, nil)
	}
	return &recipe, nil
}

func replaceTags(tx *gorm.DB, recipeID uint, tags []string) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.RecipeTag, len(tags))
	for i, t := range tags {
		rows[i] = models.RecipeTag{RecipeID: recipeID, Tag: t}
	}
	return tx.Create(&rows).Error
}

func replaceCategories(tx *gorm.DB, recipeID uint, ids []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeCategory{}).Error; err != nil {
		return err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(&models.Category{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) != len(ids) {
		return apperror.NewValidationError("Unknown category selected", nil)
	}
	rows := make([]models.RecipeCategory, len(ids))
	for i, id := range ids {
		rows[i] = models.RecipeCategory{RecipeID: recipeID, CategoryID: id}
	}
	return tx.Create(&rows).Error
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// GetRecipe loads a recipe with author, categories, tags, save count and
// whether viewerID saved it.
func (s *Store) GetRecipe(ctx context.Context, id, viewerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.name") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.tag") }).
		First(&recipe, id).Error
	if err != nil {
		return nil, dbError(err, "Recipe not found")
	}
	list := []models.Recipe{recipe}
	if err := s.AnnotateSaved(ctx, viewerID, list); err != nil {
		return nil, err
	}
	recipe = list[0]
	recipe.User.Password = ""
	return &recipe, nil
}

// ListRecipes returns recipes matching f, each annotated for f.ViewerID.
func (s *Store) ListRecipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, error) {
	q := s.filtered(ctx, f)
	switch f.Order {
	case OrderOldest:
		q = q.Order("recipes.created_at ASC, recipes.id ASC")
	case OrderTitle:
		q = q.Order("LOWER(recipes.title) ASC, recipes.id ASC")
	case OrderCalories:
		q = q.Order("recipes.calories ASC, recipes.id ASC")
	case OrderPopular:
		q = q.Order("(SELECT COUNT(*) FROM saved_recipes WHERE saved_recipes.recipe_id = recipes.id) DESC, recipes.created_at DESC, recipes.id DESC")
	default:
		q = q.Order("recipes.created_at DESC, recipes.id DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recipes []models.Recipe
	err := q.Preload("User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.name") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.tag") }).
		Find(&recipes).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	for i := range recipes {
		recipes[i].User.Password = ""
	}
	if err := s.AnnotateSaved(ctx, f.ViewerID, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountRecipes counts recipes matching f, ignoring order and paging.
func (s *Store) CountRecipes(ctx context.Context, f RecipeFilter) (int64, error) {
	var n int64
	if err := s.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, dbError(err, "")
	}
	return n, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *Store) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	tx := s.db.WithContext(ctx)
	q := tx.Model(&models.Recipe{})
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`(LOWER(recipes.title) LIKE ? ESCAPE '\' OR LOWER(recipes.description) LIKE ? ESCAPE '\')`, like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("recipes.id IN (?)", tx.Model(&models.RecipeCategory{}).Select("recipe_id").Where("category_id = ?", f.CategoryID))
	}
	if d := strings.ToLower(strings.TrimSpace(f.Difficulty)); d != "" {
		q = q.Where("recipes.difficulty = ?", d)
	}
	if tags := utils.SplitTags(strings.Join(f.Tags, ",")); len(tags) > 0 {
		q = q.Where("recipes.id IN (?)", tx.Model(&models.RecipeTag{}).Select("recipe_id").Where("tag IN ?", tags))
	}
	if f.AuthorID != 0 {
		q = q.Where("recipes.user_id = ?", f.AuthorID)
	}
	if f.SavedBy != 0 {
		q = q.Where("recipes.id IN (?)", tx.Model(&models.SavedRecipe{}).Select("recipe_id").Where("user_id = ?", f.SavedBy))
	}
	return q
}

// AnnotateSaved sets SaveCount on every recipe and IsSaved for viewerID.
func (s *Store) AnnotateSaved(ctx context.Context, viewerID uint, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	var counts []idCount
	err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Select("recipe_id AS id, COUNT(*) AS count").
		Where("recipe_id IN ?", ids).Group("recipe_id").
		Scan(&counts).Error
	if err != nil {
		return dbError(err, "")
	}
	countMap := toCountMap(counts)

	saved := map[uint]bool{}
	if viewerID != 0 {
		var savedIDs []uint
		err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
			Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
			Pluck("recipe_id", &savedIDs).Error
		if err != nil {
			return dbError(err, "")
		}
		for _, id := range savedIDs {
			saved[id] = true
		}
	}

	for i := range recipes {
		recipes[i].SaveCount = countMap[recipes[i].ID]
		recipes[i].IsSaved = saved[recipes[i].ID]
	}
	return nil
}

// PopularRecipes ranks the most saved candidates by a save count decayed
// with age, so fresh favourites beat old ones.
func (s *Store) PopularRecipes(ctx context.Context, limit int) ([]models.Recipe, error) {
	candidates, err := s.ListRecipes(ctx, RecipeFilter{Order: OrderPopular, Limit: limit * 4})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sort.SliceStable(candidates, func(i, j int) bool {
		return utils.PopularityScore(candidates[i].CreatedAt, candidates[i].SaveCount, now) >
			utils.PopularityScore(candidates[j].CreatedAt, candidates[j].SaveCount, now)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
