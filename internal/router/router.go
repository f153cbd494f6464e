package router

import (
	"recipebox/internal/handlers"
	"recipebox/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes wires every page and endpoint. rdb may be nil, which turns
// rate limiting off.
func RegisterRoutes(r *gin.Engine, d *handlers.Deps, rdb *redis.Client) {
	authHandler := handlers.NewAuthHandler(d)
	homeHandler := handlers.NewHomeHandler(d)
	recipeHandler := handlers.NewRecipeHandler(d)
	bookmarkHandler := handlers.NewBookmarkHandler(d)
	userHandler := handlers.NewUserHandler(d)
	categoryHandler := handlers.NewCategoryHandler(d)
	healthHandler := handlers.NewHealthHandler(d)
	seoHandler := handlers.NewSEOHandler(d)

	if !d.Config.RateLimitEnabled {
		rdb = nil
	}
	limit := middleware.RateLimit(rdb, d.Config.RateLimitMax, d.Config.RateLimitWindow, middleware.KeyByIPAndPath())

	// Public Routes
	r.GET("/", homeHandler.Index)                  // popular + recent recipes
	r.GET("/recipes/browse", recipeHandler.Browse) // filtered listing
	r.GET("/recipes/:id", recipeHandler.Detail)    // recipe detail
	r.GET("/categories", categoryHandler.List)     // grouped categories
	r.GET("/users", userHandler.List)              // user directory
	r.GET("/users/:username", userHandler.Profile) // public profile
	r.GET("/logout", authHandler.Logout)           // clears session and remember token
	r.GET("/api/healthcheck", healthHandler.Check) // liveness + database ping
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/reset-password", authHandler.ShowResetPassword)
	r.POST("/reset-password", limit, authHandler.ResetPassword)

	// Guest Routes
	guest := r.Group("/")
	guest.Use(middleware.GuestOnly())
	{
		guest.GET("/signup", authHandler.ShowSignup)
		guest.POST("/signup", limit, authHandler.Signup)
		guest.GET("/login", authHandler.ShowLogin)
		guest.POST("/login", limit, authHandler.Login)
		guest.GET("/forgot-password", authHandler.ShowForgotPassword)
		guest.POST("/forgot-password", limit, authHandler.ForgotPassword)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/dashboard", homeHandler.Index)

		authorized.GET("/recipes/new", recipeHandler.ShowCreate)
		authorized.POST("/recipes", recipeHandler.Create)
		authorized.GET("/recipes/saved", recipeHandler.Saved)
		authorized.GET("/recipes/mine", recipeHandler.Mine)
		authorized.GET("/recipes/:id/edit", recipeHandler.ShowEdit)
		authorized.POST("/recipes/:id/edit", recipeHandler.Update)
		authorized.DELETE("/recipes/:id", recipeHandler.Delete)

		authorized.POST("/recipes/:id/save", bookmarkHandler.Save)
		authorized.DELETE("/recipes/:id/save", bookmarkHandler.Unsave)
		authorized.POST("/recipes/:id/save/toggle", bookmarkHandler.Toggle)

		authorized.POST("/users/:username/follow", userHandler.Follow)
		authorized.DELETE("/users/:username/follow", userHandler.Unfollow)

		authorized.GET("/profile", userHandler.Me)
		authorized.GET("/profile/edit", userHandler.ShowEditProfile)
		authorized.POST("/profile/edit", userHandler.UpdateProfile)

		authorized.POST("/api/cache/clear", healthHandler.ClearCache)
	}

	r.NoRoute(d.NotFound)
}
