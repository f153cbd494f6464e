package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"recipebox/internal/apperror"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/store"
	"recipebox/internal/utils"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	*Deps
}

func NewRecipeHandler(d *Deps) *RecipeHandler {
	return &RecipeHandler{Deps: d}
}

func recipeURL(id uint) string {
	return "/recipes/" + strconv.FormatUint(uint64(id), 10)
}

func recipeID(c *gin.Context) (uint, error) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return 0, apperror.NewNotFoundError("Recipe not found", nil)
	}
	return id, nil
}

// recipeBody is the JSON shape of a recipe write.
type recipeBody struct {
	store.RecipeInput
	Categories []uint `json:"categories"`
}

// bindRecipe reads a recipe from JSON or from the HTML form, where
// ingredients are one per line and tags comma separated.
func bindRecipe(c *gin.Context) (store.RecipeInput, []uint, error) {
	if c.ContentType() == "application/json" {
		var body recipeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			return store.RecipeInput{}, nil, apperror.NewValidationError("Invalid recipe data", err)
		}
		return body.RecipeInput, body.Categories, nil
	}

	in := store.RecipeInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Ingredients:  utils.SplitLines(strings.Join(c.PostFormArray("ingredients"), "\n")),
		Instructions: c.PostForm("instructions"),
		Difficulty:   c.PostForm("difficulty"),
		ImageURL:     c.PostForm("image_url"),
		Tags:         utils.SplitTags(c.PostForm("tags")),
	}
	var err error
	if in.CookingTime, err = formInt(c, "cooking_time", "Cooking time"); err != nil {
		return in, nil, err
	}
	if in.Servings, err = formInt(c, "servings", "Servings"); err != nil {
		return in, nil, err
	}
	if in.Calories, err = formInt(c, "calories", "Calories"); err != nil {
		return in, nil, err
	}
	return in, utils.ParseIDs(c.PostFormArray("categories")), nil
}

// formInt reads an optional whole number; an empty field is 0.
func formInt(c *gin.Context, field, label string) (int, error) {
	v := strings.TrimSpace(c.PostForm(field))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperror.NewValidationError(label+" must be a whole number", err)
	}
	return n, nil
}

// filterFromQuery reads the browse filters from the query string.
func filterFromQuery(c *gin.Context) store.RecipeFilter {
	f := store.RecipeFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Difficulty: c.Query("difficulty"),
		Order:      c.DefaultQuery("order", store.OrderNewest),
		ViewerID:   middleware.CurrentUserID(c),
	}
	if id, ok := utils.ParseID(c.Query("category")); ok {
		f.CategoryID = id
	}
	if tags := c.Query("tags"); tags != "" {
		f.Tags = utils.SplitTags(tags)
	}
	if f.Difficulty != "" && !models.ValidDifficulty(strings.ToLower(f.Difficulty)) {
		f.Difficulty = ""
	}
	return f
}

// list renders one page of recipes matching f.
func (h *RecipeHandler) list(c *gin.Context, f store.RecipeFilter, heading string) {
	ctx := c.Request.Context()
	page := store.NewPagination(utils.StringToInt(c.Query("page")), store.DefaultPageSize)

	total, err := h.Store.CountRecipes(ctx, f)
	if err != nil {
		h.pageError(c, err)
		return
	}
	page.Total = total
	f.Limit = page.PageSize
	f.Offset = page.Offset()
	recipes, err := h.Store.ListRecipes(ctx, f)
	if err != nil {
		h.pageError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "recipes": recipes, "pagination": page})
		return
	}
	categories, err := h.Feed.Categories(ctx)
	if err != nil {
		h.pageError(c, err)
		return
	}
	Render(c, http.StatusOK, "recipe/browse.html", gin.H{
		"Title":        heading,
		"Recipes":      recipes,
		"Pagination":   page,
		"Filter":       f,
		"Categories":   categories,
		"Difficulties": models.Difficulties,
		"Query":        c.Request.URL.Query(),
	})
}

// Browse - /recipes/browse
func (h *RecipeHandler) Browse(c *gin.Context) {
	f := filterFromQuery(c)
	heading := "Browse recipes"
	if f.CategoryID != 0 {
		cat, err := h.Store.GetCategory(c.Request.Context(), f.CategoryID)
		if err != nil {
			h.pageError(c, err)
			return
		}
		heading = cat.Name + " recipes"
	}
	h.list(c, f, heading)
}

// Saved - /recipes/saved
func (h *RecipeHandler) Saved(c *gin.Context) {
	f := filterFromQuery(c)
	f.SavedBy = middleware.CurrentUserID(c)
	h.list(c, f, "Saved recipes")
}

// Mine - /recipes/mine
func (h *RecipeHandler) Mine(c *gin.Context) {
	f := filterFromQuery(c)
	f.AuthorID = middleware.CurrentUserID(c)
	h.list(c, f, "My recipes")
}

// Detail - /recipes/:id
func (h *RecipeHandler) Detail(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		h.pageError(c, err)
		return
	}
	ctx := c.Request.Context()
	viewerID := middleware.CurrentUserID(c)
	recipe, err := h.Store.GetRecipe(ctx, id, viewerID)
	if err != nil {
		h.pageError(c, err)
		return
	}
	following, err := h.Store.IsFollowing(ctx, viewerID, recipe.UserID)
	if err != nil {
		h.pageError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "recipe": recipe, "isFollowingAuthor": following})
		return
	}
	Render(c, http.StatusOK, "recipe/detail.html", gin.H{
		"Title":             recipe.Title,
		"Recipe":            recipe,
		"IsAuthor":          viewerID != 0 && viewerID == recipe.UserID,
		"IsFollowingAuthor": following,
	})
}

func (h *RecipeHandler) renderForm(c *gin.Context, title string, recipe *models.Recipe, action string) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		h.pageError(c, err)
		return
	}
	Render(c, http.StatusOK, "recipe/form.html", gin.H{
		"Title":        title,
		"Recipe":       recipe,
		"Action":       action,
		"Categories":   categories,
		"Difficulties": models.Difficulties,
	})
}

// ShowCreate - /recipes/new
func (h *RecipeHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, "New recipe", &models.Recipe{Difficulty: models.DifficultyMedium}, "/recipes")
}

// Create - POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	in, categoryIDs, err := bindRecipe(c)
	if err != nil {
		h.fail(c, err, "/recipes/new")
		return
	}
	ctx := c.Request.Context()
	recipe, err := h.Store.CreateRecipe(ctx, middleware.CurrentUserID(c), in, categoryIDs)
	if err != nil {
		h.fail(c, err, "/recipes/new")
		return
	}
	h.Feed.InvalidateRecipes(ctx)
	h.Log.WithField("recipe_id", recipe.ID).Info("recipe created")
	succeed(c, "Recipe created successfully!", recipeURL(recipe.ID), gin.H{"recipe": recipe})
}

// ShowEdit - /recipes/:id/edit, author only
func (h *RecipeHandler) ShowEdit(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		h.pageError(c, err)
		return
	}
	viewerID := middleware.CurrentUserID(c)
	recipe, err := h.Store.GetRecipe(c.Request.Context(), id, viewerID)
	if err != nil {
		h.pageError(c, err)
		return
	}
	if recipe.UserID != viewerID {
		h.pageError(c, apperror.NewAuthorizationError("You can only edit your own recipes", nil))
		return
	}
	h.renderForm(c, "Edit "+recipe.Title, recipe, recipeURL(recipe.ID)+"/edit")
}

// Update - POST /recipes/:id/edit
func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		h.fail(c, err, "/recipes/browse")
		return
	}
	back := recipeURL(id) + "/edit"
	in, categoryIDs, err := bindRecipe(c)
	if err != nil {
		h.fail(c, err, back)
		return
	}
	ctx := c.Request.Context()
	recipe, err := h.Store.UpdateRecipe(ctx, id, middleware.CurrentUserID(c), in, categoryIDs)
	if err != nil {
		if apperror.IsAuthorization(err) || apperror.IsNotFound(err) {
			back = recipeURL(id)
		}
		h.fail(c, err, back)
		return
	}
	h.Feed.InvalidateRecipes(ctx)
	succeed(c, "Recipe updated successfully!", recipeURL(recipe.ID), gin.H{"recipe": recipe})
}

// Delete - DELETE /recipes/:id, always answers JSON.
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.Store.DeleteRecipe(ctx, id, middleware.CurrentUserID(c)); err != nil {
		h.jsonError(c, err)
		return
	}
	h.Feed.InvalidateRecipes(ctx)
	h.Log.WithField("recipe_id", id).Info("recipe deleted")
	c.JSON(http.StatusOK, gin.H{"success": true, "redirectUrl": "/recipes/mine"})
}
