package services

import (
	"context"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	popularRecipesLimit = 6
	recentRecipesLimit  = 8
	suggestedUsersLimit = 4
)

// Home is the data behind the home page and the dashboard.
type Home struct {
	Popular        []models.Recipe       `json:"popular"`
	Recent         []models.Recipe       `json:"recent"`
	Categories     []store.CategoryGroup `json:"categories"`
	SuggestedUsers []models.User         `json:"suggested_users"`
}

// FeedService assembles the home feed. The expensive aggregates are
// memoized in the cache without any viewer state; per-viewer flags are
// applied after every read.
type FeedService struct {
	store *store.Store
	cache cache.Store
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewFeedService(st *store.Store, c cache.Store, ttl time.Duration, log logrus.FieldLogger) *FeedService {
	if c == nil {
		c = cache.NoopStore{}
	}
	return &FeedService{store: st, cache: c, ttl: ttl, log: log}
}

// Home returns the feed for viewerID; 0 is anonymous and gets no suggestions.
func (s *FeedService) Home(ctx context.Context, viewerID uint) (*Home, error) {
	popular, err := cache.Remember(ctx, s.cache, cache.KeyPopularRecipes, s.ttl, func(ctx context.Context) ([]models.Recipe, error) {
		return s.store.PopularRecipes(ctx, popularRecipesLimit)
	})
	if err != nil {
		return nil, err
	}
	recent, err := cache.Remember(ctx, s.cache, cache.KeyRecentRecipes, s.ttl, func(ctx context.Context) ([]models.Recipe, error) {
		return s.store.ListRecipes(ctx, store.RecipeFilter{Order: store.OrderNewest, Limit: recentRecipesLimit})
	})
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.AnnotateSaved(ctx, viewerID, popular); err != nil {
		return nil, err
	}
	if err := s.store.AnnotateSaved(ctx, viewerID, recent); err != nil {
		return nil, err
	}

	home := &Home{Popular: popular, Recent: recent, Categories: categories}
	if viewerID != 0 {
		if home.SuggestedUsers, err = s.suggestedUsers(ctx, viewerID); err != nil {
			return nil, err
		}
	}
	return home, nil
}

// Categories returns the grouped categories with recipe counts.
func (s *FeedService) Categories(ctx context.Context) ([]store.CategoryGroup, error) {
	return cache.Remember(ctx, s.cache, cache.KeyGroupedCategories, s.ttl, s.store.GroupedCategories)
}

func (s *FeedService) suggestedUsers(ctx context.Context, viewerID uint) ([]models.User, error) {
	// one spare so dropping the viewer still fills the row
	popular, err := cache.Remember(ctx, s.cache, cache.KeyPopularUsers, s.ttl, func(ctx context.Context) ([]models.User, error) {
		return s.store.PopularUsers(ctx, suggestedUsersLimit+1)
	})
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, suggestedUsersLimit)
	for _, u := range popular {
		if u.ID == viewerID {
			continue
		}
		users = append(users, u)
		if len(users) == suggestedUsersLimit {
			break
		}
	}
	if err := s.store.AnnotateFollowing(ctx, viewerID, users); err != nil {
		return nil, err
	}
	return users, nil
}

// InvalidateRecipes drops every aggregate a recipe write can change.
func (s *FeedService) InvalidateRecipes(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, cache.RecipeKeys...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate recipe cache")
	}
}

// InvalidateUsers drops the cached user suggestions after follows and signups.
func (s *FeedService) InvalidateUsers(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, cache.KeyPopularUsers); err != nil {
		s.log.WithError(err).Warn("failed to invalidate user cache")
	}
}

// Clear drops key, or the whole cache when key is empty.
func (s *FeedService) Clear(ctx context.Context, key string) error {
	if err := cache.Clear(ctx, s.cache, key); err != nil {
		return err
	}
	s.log.WithField("key", key).Info("cache cleared")
	return nil
}
