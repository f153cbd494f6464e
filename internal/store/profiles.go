package store

import (
	"context"

	"recipebox/internal/models"
)

// UserProfile is everything the public profile page shows.
type UserProfile struct {
	User           models.User     `json:"user"`
	RecipeCount    int64           `json:"recipe_count"`
	FollowerCount  int64           `json:"follower_count"`
	FollowingCount int64           `json:"following_count"`
	Recipes        []models.Recipe `json:"recipes"`
	Pagination     Pagination      `json:"pagination"`
	IsFollowing    bool            `json:"is_following"`
	IsSelf         bool            `json:"is_self"`
}

// GetUserProfile loads a user by username with counts, one page of their
// recipes and the viewer's follow state.
func (s *Store) GetUserProfile(ctx context.Context, username string, viewerID uint, page int) (*UserProfile, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p := &UserProfile{User: *user, IsSelf: viewerID != 0 && viewerID == user.ID}

	filter := RecipeFilter{AuthorID: user.ID, ViewerID: viewerID}
	if p.RecipeCount, err = s.CountRecipes(ctx, filter); err != nil {
		return nil, err
	}
	if p.FollowerCount, err = s.FollowerCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.FollowingCount, err = s.FollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.IsFollowing, err = s.IsFollowing(ctx, viewerID, user.ID); err != nil {
		return nil, err
	}

	p.Pagination = NewPagination(page, DefaultPageSize)
	p.Pagination.Total = p.RecipeCount
	filter.Limit = p.Pagination.PageSize
	filter.Offset = p.Pagination.Offset()
	if p.Recipes, err = s.ListRecipes(ctx, filter); err != nil {
		return nil, err
	}

	p.User.RecipeCount = p.RecipeCount
	p.User.FollowerCount = p.FollowerCount
	p.User.IsFollowing = p.IsFollowing
	return p, nil
}
