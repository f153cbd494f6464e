package middleware

import (
	"net/http"
	"strings"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/session"
	"recipebox/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	CurrentUserKey = "current_user"
	RememberCookie = "remember_token"
)

// CurrentUser returns the session user set by LoadUser.
func CurrentUser(c *gin.Context) (session.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return session.User{}, false
	}
	u, ok := v.(session.User)
	return u, ok
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	u, _ := CurrentUser(c)
	return u.ID
}

// WantsJSON reports whether the client expects a JSON answer instead of a page.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func SetRememberCookie(c *gin.Context, cfg *config.Config, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookie, token, int(cfg.RememberTTL/time.Second), "/", "", cfg.CookieSecure, true)
}

func ClearRememberCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookie, "", -1, "/", "", cfg.CookieSecure, true)
}

// LoadUser puts the session user into the context. Anonymous requests with a
// valid remember-me cookie get their session re-established.
func LoadUser(st *store.Store, cfg *config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		if u, ok := session.CurrentUser(s); ok {
			c.Set(CurrentUserKey, u)
			c.Next()
			return
		}

		token, err := c.Cookie(RememberCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		user, err := st.UserByRememberToken(c.Request.Context(), token)
		if err != nil {
			ClearRememberCookie(c, cfg)
			c.Next()
			return
		}
		session.SetUser(s, user)
		if err := s.Save(); err != nil {
			log.WithError(err).Warn("failed to restore session from remember token")
		}
		u, _ := session.CurrentUser(s)
		c.Set(CurrentUserKey, u)
		log.WithField("user_id", user.ID).Debug("session restored from remember token")
		c.Next()
	}
}

// AuthRequired lets authenticated requests through and refreshes the session
// expiry. Others get 401 JSON, or a redirect to /login that comes back here.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		if _, ok := CurrentUser(c); ok {
			session.Touch(s)
			_ = s.Save()
			c.Next()
			return
		}

		const msg = "Please log in to continue"
		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
			return
		}
		if c.Request.Method == http.MethodGet {
			session.SetReturnTo(s, c.Request.URL.RequestURI())
		}
		session.AddFlash(s, session.FlashError, msg)
		_ = s.Save()
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// GuestOnly sends logged-in users away from login and signup.
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
