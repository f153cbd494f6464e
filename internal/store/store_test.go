package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"recipebox/internal/apperror"
	"recipebox/internal/db/dbtest"
	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(dbtest.New(t))
}

func mustUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	return u
}

func categoryID(t *testing.T, s *Store, name string) uint {
	t.Helper()
	categories, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	for _, c := range categories {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not seeded", name)
	return 0
}

func recipeInput(title string) RecipeInput {
	return RecipeInput{
		Title:        title,
		Description:  "A weeknight favourite",
		Ingredients:  []string{"4 tomatoes", "1 onion"},
		Instructions: "1. Chop\n2. Simmer",
		CookingTime:  30,
		Servings:     2,
		Difficulty:   "easy",
		Calories:     120,
	}
}

func mustRecipe(t *testing.T, s *Store, authorID uint, in RecipeInput, categoryIDs ...uint) *models.Recipe {
	t.Helper()
	r, err := s.CreateRecipe(context.Background(), authorID, in, categoryIDs)
	require.NoError(t, err)
	return r
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func count(t *testing.T, s *Store, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestCreateUserUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	alice, err := s.CreateUser(ctx, NewUser{Username: "Alice", Email: "Alice@Example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Empty(t, alice.Password)

	_, err = s.CreateUser(ctx, NewUser{Username: "ALICE", Email: "other@example.com", Password: "Secret123!"})
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "Username is already taken")

	_, err = s.CreateUser(ctx, NewUser{Username: "bob", Email: "ALICE@example.COM", Password: "Secret123!"})
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "Email is already registered")
}

func TestCreateUserRejectsWeakPassword(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser(context.Background(), NewUser{Username: "carol", Email: "carol@example.com", Password: "password"})
	assert.True(t, apperror.IsValidation(err))

	_, err = s.CreateUser(context.Background(), NewUser{Username: "carol", Email: "not-an-email", Password: "Secret123!"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	byName, err := s.AuthenticateUser(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)
	assert.Empty(t, byName.Password)

	byEmail, err := s.AuthenticateUser(ctx, "ALICE@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = s.AuthenticateUser(ctx, "alice", "wrong")
	assert.True(t, apperror.IsAuth(err))
	_, err = s.AuthenticateUser(ctx, "nobody", "Secret123!")
	assert.True(t, apperror.IsAuth(err))
	_, err = s.AuthenticateUser(ctx, "", "")
	assert.True(t, apperror.IsAuth(err))
}

func TestTomatoSoupScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	created := mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"))
	assert.Equal(t, "alice", created.User.Username)
	assert.Equal(t, 120, created.Calories)
	assert.Equal(t, models.DifficultyEasy, created.Difficulty)
	assert.Equal(t, []string{"4 tomatoes", "1 onion"}, created.Ingredients)

	found, err := s.ListRecipes(ctx, RecipeFilter{Search: "tomato"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
	assert.Equal(t, alice.ID, found[0].User.ID)
	assert.False(t, found[0].IsSaved)
}

func TestCreateRecipeValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	cases := map[string]func(in *RecipeInput){
		"empty title":        func(in *RecipeInput) { in.Title = "  " },
		"empty instructions": func(in *RecipeInput) { in.Instructions = "" },
		"blank ingredients":  func(in *RecipeInput) { in.Ingredients = []string{" ", ""} },
		"negative calories":  func(in *RecipeInput) { in.Calories = -1 },
		"negative time":      func(in *RecipeInput) { in.CookingTime = -5 },
		"bad difficulty":     func(in *RecipeInput) { in.Difficulty = "extreme" },
		"bad image url":      func(in *RecipeInput) { in.ImageURL = "not a url" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := recipeInput("Broken")
			mutate(&in)
			_, err := s.CreateRecipe(ctx, alice.ID, in, nil)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := s.CreateRecipe(ctx, alice.ID, recipeInput("Orphan"), []uint{9999})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, int64(0), count(t, s, &models.Recipe{}, "title = ?", "Orphan"))
}

func TestCreateRecipeNormalizesInput(t *testing.T) {
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	in := recipeInput("  Pancakes  ")
	in.Difficulty = ""
	in.Ingredients = []string{" flour ", "", "milk"}
	in.Tags = []string{"Breakfast", "sweet", "breakfast"}
	r := mustRecipe(t, s, alice.ID, in, categoryID(t, s, "Breakfast"), categoryID(t, s, "Breakfast"))

	assert.Equal(t, "Pancakes", r.Title)
	assert.Equal(t, models.DifficultyMedium, r.Difficulty)
	assert.Equal(t, []string{"flour", "milk"}, r.Ingredients)
	assert.Equal(t, []string{"breakfast", "sweet"}, r.TagNames())
	require.Len(t, r.Categories, 1)
	assert.Equal(t, "Breakfast", r.Categories[0].Name)
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	r := mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"), categoryID(t, s, "Vegan"))

	_, err := s.UpdateRecipe(ctx, r.ID, bob.ID, recipeInput("Hijacked"), nil)
	assert.True(t, apperror.IsAuthorization(err))

	_, err = s.UpdateRecipe(ctx, 9999, alice.ID, recipeInput("Missing"), nil)
	assert.True(t, apperror.IsNotFound(err))

	in := recipeInput("Roasted Tomato Soup")
	in.Calories = 150
	in.Tags = []string{"soup"}
	updated, err := s.UpdateRecipe(ctx, r.ID, alice.ID, in, []uint{categoryID(t, s, "Vegetarian"), categoryID(t, s, "Starter")})
	require.NoError(t, err)
	assert.Equal(t, "Roasted Tomato Soup", updated.Title)
	assert.Equal(t, 150, updated.Calories)
	assert.Equal(t, []string{"soup"}, updated.TagNames())
	require.Len(t, updated.Categories, 2)
	assert.False(t, updated.HasCategory(categoryID(t, s, "Vegan")))
	assert.Equal(t, int64(2), count(t, s, &models.RecipeCategory{}, "recipe_id = ?", r.ID))
}

func TestDeleteRecipeRemovesJoinRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	in := recipeInput("Tomato Soup")
	in.Tags = []string{"soup", "quick"}
	r := mustRecipe(t, s, alice.ID, in, categoryID(t, s, "Vegan"), categoryID(t, s, "Starter"))
	require.NoError(t, s.SaveRecipe(ctx, bob.ID, r.ID))
	require.NoError(t, s.SaveRecipe(ctx, alice.ID, r.ID))

	assert.True(t, apperror.IsAuthorization(s.DeleteRecipe(ctx, r.ID, bob.ID)))
	require.NoError(t, s.DeleteRecipe(ctx, r.ID, alice.ID))

	assert.Equal(t, int64(0), count(t, s, &models.SavedRecipe{}, "recipe_id = ?", r.ID))
	assert.Equal(t, int64(0), count(t, s, &models.RecipeCategory{}, "recipe_id = ?", r.ID))
	assert.Equal(t, int64(0), count(t, s, &models.RecipeTag{}, "recipe_id = ?", r.ID))

	_, err := s.GetRecipe(ctx, r.ID, alice.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(s.DeleteRecipe(ctx, r.ID, alice.ID)))
}

func TestSaveToggleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	r := mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"))

	saved, err := s.ToggleSave(ctx, bob.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = s.ToggleSave(ctx, bob.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, int64(0), count(t, s, &models.SavedRecipe{}, "user_id = ?", bob.ID))

	require.NoError(t, s.SaveRecipe(ctx, bob.ID, r.ID))
	require.NoError(t, s.SaveRecipe(ctx, bob.ID, r.ID))
	n, err := s.SaveCount(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.UnsaveRecipe(ctx, bob.ID, r.ID))
	require.NoError(t, s.UnsaveRecipe(ctx, bob.ID, r.ID))
	is, err := s.IsSaved(ctx, bob.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, is)

	assert.True(t, apperror.IsNotFound(s.SaveRecipe(ctx, bob.ID, 9999)))
	_, err = s.ToggleSave(ctx, bob.ID, 9999)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFollowScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	require.NoError(t, s.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, s.Follow(ctx, bob.ID, alice.ID))
	p, err := s.GetUserProfile(ctx, "alice", bob.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.FollowerCount)
	assert.True(t, p.IsFollowing)

	require.NoError(t, s.Unfollow(ctx, bob.ID, alice.ID))
	p, err = s.GetUserProfile(ctx, "alice", bob.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.FollowerCount)
	assert.False(t, p.IsFollowing)
	assert.Equal(t, int64(0), count(t, s, &models.UserFollow{}, "follower_id = ?", bob.ID))

	following, err := s.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = s.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestSelfFollowRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	assert.True(t, apperror.IsValidation(s.Follow(ctx, alice.ID, alice.ID)))
	_, err := s.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, int64(0), count(t, s, &models.UserFollow{}, "follower_id = ?", alice.ID))

	assert.True(t, apperror.IsNotFound(s.Follow(ctx, alice.ID, 9999)))
}

func TestSearchMatchesTitleOrDescription(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	mustRecipe(t, s, alice.ID, recipeInput("Creamy Pasta"))
	salad := recipeInput("Green Salad")
	salad.Description = "Goes well with PASTA night"
	mustRecipe(t, s, alice.ID, salad)
	mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"))

	found, err := s.ListRecipes(ctx, RecipeFilter{Search: "Pasta"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, r := range found {
		assert.True(t, containsFold(r.Title, "pasta") || containsFold(r.Description, "pasta"), r.Title)
	}

	n, err := s.CountRecipes(ctx, RecipeFilter{Search: "pasta"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	soup := recipeInput("Tomato Soup")
	soup.Description = "plain"
	mustRecipe(t, s, alice.ID, soup)

	for _, term := range []string{"_", "%", "o_p", `\`, "%soup"} {
		found, err := s.ListRecipes(ctx, RecipeFilter{Search: term})
		require.NoError(t, err)
		assert.Empty(t, found, term)
		n, err := s.CountRecipes(ctx, RecipeFilter{Search: term})
		require.NoError(t, err)
		assert.Zero(t, n, term)
	}

	odd := recipeInput(`Half_Baked 100% C:\Bread`)
	odd.Description = "plain"
	mustRecipe(t, s, alice.ID, odd)

	for _, term := range []string{"_", "100%", "f_b", `c:\`} {
		found, err := s.ListRecipes(ctx, RecipeFilter{Search: term})
		require.NoError(t, err)
		require.Len(t, found, 1, term)
		assert.Equal(t, odd.Title, found[0].Title)
	}
}

func TestListRecipesFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	vegan := categoryID(t, s, "Vegan")

	soup := recipeInput("Tomato Soup")
	soup.Tags = []string{"soup", "quick"}
	soupR := mustRecipe(t, s, alice.ID, soup, vegan)

	stew := recipeInput("Beef Stew")
	stew.Difficulty = "hard"
	stew.Calories = 600
	stew.Tags = []string{"winter"}
	stewR := mustRecipe(t, s, bob.ID, stew, categoryID(t, s, "Beef"))

	cake := recipeInput("Apple Cake")
	cake.Difficulty = "medium"
	cake.Calories = 350
	cake.Tags = []string{"quick"}
	cakeR := mustRecipe(t, s, alice.ID, cake)

	ids := func(rs []models.Recipe) []uint {
		out := make([]uint, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}
	list := func(f RecipeFilter) []uint {
		rs, err := s.ListRecipes(ctx, f)
		require.NoError(t, err)
		return ids(rs)
	}

	assert.Equal(t, []uint{soupR.ID}, list(RecipeFilter{CategoryID: vegan}))
	assert.Equal(t, []uint{stewR.ID}, list(RecipeFilter{Difficulty: "HARD"}))
	assert.ElementsMatch(t, []uint{soupR.ID, cakeR.ID}, list(RecipeFilter{Tags: []string{"quick"}}))
	assert.ElementsMatch(t, []uint{soupR.ID, stewR.ID}, list(RecipeFilter{Tags: []string{"soup", "winter"}}))
	assert.ElementsMatch(t, []uint{soupR.ID, cakeR.ID}, list(RecipeFilter{AuthorID: alice.ID}))
	assert.Equal(t, []uint{cakeR.ID, stewR.ID, soupR.ID}, list(RecipeFilter{Order: OrderTitle}))
	assert.Equal(t, []uint{soupR.ID, cakeR.ID, stewR.ID}, list(RecipeFilter{Order: OrderCalories}))
	assert.Equal(t, []uint{cakeR.ID, stewR.ID, soupR.ID}, list(RecipeFilter{Order: OrderNewest}))
	assert.Equal(t, []uint{soupR.ID, stewR.ID, cakeR.ID}, list(RecipeFilter{Order: OrderOldest}))
	assert.Equal(t, []uint{stewR.ID}, list(RecipeFilter{Order: OrderTitle, Limit: 1, Offset: 1}))

	require.NoError(t, s.SaveRecipe(ctx, bob.ID, soupR.ID))
	assert.Equal(t, []uint{soupR.ID}, list(RecipeFilter{SavedBy: bob.ID}))
	assert.Equal(t, soupR.ID, list(RecipeFilter{Order: OrderPopular})[0])

	rs, err := s.ListRecipes(ctx, RecipeFilter{ViewerID: bob.ID, Order: OrderOldest})
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.True(t, rs[0].IsSaved)
	assert.Equal(t, int64(1), rs[0].SaveCount)
	assert.False(t, rs[1].IsSaved)

	anon, err := s.ListRecipes(ctx, RecipeFilter{Order: OrderOldest})
	require.NoError(t, err)
	assert.False(t, anon[0].IsSaved)
}

func TestPopularRecipesPrefersSaved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")

	plain := mustRecipe(t, s, alice.ID, recipeInput("Plain Rice"))
	loved := mustRecipe(t, s, alice.ID, recipeInput("Loved Lasagne"))
	require.NoError(t, s.SaveRecipe(ctx, bob.ID, loved.ID))
	require.NoError(t, s.SaveRecipe(ctx, carol.ID, loved.ID))

	popular, err := s.PopularRecipes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, loved.ID, popular[0].ID)
	assert.NotEqual(t, plain.ID, popular[0].ID)
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"))
	mustRecipe(t, s, alice.ID, recipeInput("Apple Cake"))
	require.NoError(t, s.Follow(ctx, alice.ID, bob.ID))

	p, err := s.GetUserProfile(ctx, "ALICE", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.RecipeCount)
	assert.Equal(t, int64(0), p.FollowerCount)
	assert.Equal(t, int64(1), p.FollowingCount)
	assert.Len(t, p.Recipes, 2)
	assert.False(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.Empty(t, p.User.Password)

	self, err := s.GetUserProfile(ctx, "alice", alice.ID, 1)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)

	_, err = s.GetUserProfile(ctx, "nobody", 0, 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListUsersAndPopularUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")
	mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"))
	require.NoError(t, s.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, s.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, s.Follow(ctx, carol.ID, bob.ID))

	users, err := s.ListUsers(ctx, UserFilter{ExcludeID: bob.ID, ViewerID: bob.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	byName := map[string]models.User{}
	for _, u := range users {
		byName[u.Username] = u
		assert.Empty(t, u.Password)
	}
	assert.Equal(t, int64(1), byName["alice"].RecipeCount)
	assert.True(t, byName["alice"].IsFollowing)
	assert.False(t, byName["carol"].IsFollowing)

	n, err := s.CountUsers(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	popular, err := s.PopularUsers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "alice", popular[0].Username)
	assert.Equal(t, int64(2), popular[0].FollowerCount)
	assert.Equal(t, "bob", popular[1].Username)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	mustUser(t, s, "bob")

	_, err := s.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: "Bob", Email: "alice@example.com"})
	assert.True(t, apperror.IsValidation(err))

	updated, err := s.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: "alice", Email: "Alice@Kitchen.io", Bio: "I cook"})
	require.NoError(t, err)
	assert.Equal(t, "alice@kitchen.io", updated.Email)
	assert.Equal(t, "I cook", updated.Bio)

	assert.True(t, apperror.IsAuth(s.ChangePassword(ctx, alice.ID, "wrong", "Better456!")))
	assert.True(t, apperror.IsValidation(s.ChangePassword(ctx, alice.ID, "Secret123!", "weak")))
	require.NoError(t, s.ChangePassword(ctx, alice.ID, "Secret123!", "Better456!"))

	_, err = s.AuthenticateUser(ctx, "alice@kitchen.io", "Better456!")
	assert.NoError(t, err)
}

func TestUpdateProfileWithPasswordIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	mustUser(t, s, "bob")

	_, err := s.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Username:        "bob",
		Email:           "alice@example.com",
		CurrentPassword: "Secret123!",
		NewPassword:     "Better456!",
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = s.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Username:        "alice",
		Email:           "alice@example.com",
		Bio:             "changed",
		CurrentPassword: "wrong",
		NewPassword:     "Better456!",
	})
	assert.True(t, apperror.IsAuth(err))

	_, err = s.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Username:        "alice",
		Email:           "alice@example.com",
		Bio:             "changed",
		CurrentPassword: "Secret123!",
		NewPassword:     "weak",
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = s.AuthenticateUser(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	u, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, u.Bio)

	updated, err := s.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Username:        "alice",
		Email:           "alice@example.com",
		Bio:             "changed",
		CurrentPassword: "Secret123!",
		NewPassword:     "Better456!",
	})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Bio)
	assert.Empty(t, updated.Password)
	_, err = s.AuthenticateUser(ctx, "alice", "Better456!")
	assert.NoError(t, err)
}

func TestPasswordLongerThan72BytesRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tooLong := "Aa1" + strings.Repeat("x", 70)
	require.Len(t, tooLong, 73)

	_, err := s.CreateUser(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: tooLong})
	require.True(t, apperror.IsValidation(err))
	assert.Equal(t, "Password must be at most 72 bytes long", apperror.From(err).Message)

	alice := mustUser(t, s, "alice")
	assert.True(t, apperror.IsValidation(s.ChangePassword(ctx, alice.ID, "Secret123!", tooLong)))

	_, err = s.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Username: "alice", Email: "alice@example.com", CurrentPassword: "Secret123!", NewPassword: tooLong,
	})
	assert.True(t, apperror.IsValidation(err))

	_, token, err := s.IssueResetToken(ctx, "alice@example.com", time.Hour)
	require.NoError(t, err)
	assert.True(t, apperror.IsValidation(s.ResetPassword(ctx, token, tooLong)))

	// the token survives a rejected password
	require.NoError(t, s.ResetPassword(ctx, token, tooLong[:72]))
	_, err = s.AuthenticateUser(ctx, "alice", tooLong[:72])
	assert.NoError(t, err)
}

func TestRememberToken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")

	token, err := s.IssueRememberToken(ctx, alice.ID, time.Hour)
	require.NoError(t, err)
	u, err := s.UserByRememberToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	require.NoError(t, s.ClearRememberToken(ctx, alice.ID))
	_, err = s.UserByRememberToken(ctx, token)
	assert.True(t, apperror.IsNotFound(err))

	expired, err := s.IssueRememberToken(ctx, alice.ID, -time.Minute)
	require.NoError(t, err)
	_, err = s.UserByRememberToken(ctx, expired)
	assert.True(t, apperror.IsNotFound(err))

	_, err = s.UserByRememberToken(ctx, "")
	assert.True(t, apperror.IsNotFound(err))
	_, err = s.IssueRememberToken(ctx, 9999, time.Hour)
	assert.True(t, apperror.IsNotFound(err))
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustUser(t, s, "alice")

	_, _, err := s.IssueResetToken(ctx, "nobody@example.com", time.Hour)
	assert.True(t, apperror.IsNotFound(err))

	user, token, err := s.IssueResetToken(ctx, "ALICE@example.com", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	assert.True(t, apperror.IsValidation(s.ResetPassword(ctx, token, "weak")))
	require.NoError(t, s.ResetPassword(ctx, token, "Fresh789!"))
	assert.True(t, apperror.IsNotFound(s.ResetPassword(ctx, token, "Fresh789!")))

	_, err = s.AuthenticateUser(ctx, "alice", "Fresh789!")
	assert.NoError(t, err)

	_, stale, err := s.IssueResetToken(ctx, "alice@example.com", -time.Minute)
	require.NoError(t, err)
	assert.True(t, apperror.IsNotFound(s.ResetPassword(ctx, stale, "Fresh789!")))
}

func TestGroupedCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	mustRecipe(t, s, alice.ID, recipeInput("Tomato Soup"), categoryID(t, s, "Vegan"))

	groups, err := s.GroupedCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, models.CategoryMeal, groups[0].Type)

	var vegan models.Category
	for _, g := range groups {
		for _, c := range g.Categories {
			assert.Equal(t, g.Type, c.Type)
			if c.Name == "Vegan" {
				vegan = c
			}
		}
	}
	assert.Equal(t, int64(1), vegan.RecipeCount)

	c, err := s.GetCategory(ctx, vegan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vegan", c.Name)
	_, err = s.GetCategory(ctx, 9999)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 1, p.TotalPages())

	p = NewPagination(2, 5)
	p.Total = 11
	assert.Equal(t, 5, p.Offset())
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, MaxPageSize, NewPagination(1, 1000).PageSize)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
