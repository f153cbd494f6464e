// Package session wraps the cookie session: the logged-in user projection,
// one-shot flash messages and the post-login return path.
package session

import (
	"encoding/gob"
	"net/http"
	"strings"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
)

const (
	Name = "recipebox_session"

	FlashError   = "error"
	FlashSuccess = "success"

	keyUser     = "user"
	keyReturnTo = "return_to"
	keySeenAt   = "seen_at"
)

// User is the projection kept in the session cookie. Never the password.
type User struct {
	ID           uint
	Username     string
	Email        string
	ProfileImage string
}

func (u User) Avatar() string {
	m := models.User{Username: u.Username, ProfileImage: u.ProfileImage}
	return m.Avatar()
}

func init() {
	gob.Register(User{})
}

// NewStore builds the cookie store with the configured lifetime and flags.
func NewStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func SetUser(s sessions.Session, u *models.User) {
	s.Set(keyUser, User{ID: u.ID, Username: u.Username, Email: u.Email, ProfileImage: u.ProfileImage})
}

func CurrentUser(s sessions.Session) (User, bool) {
	u, ok := s.Get(keyUser).(User)
	return u, ok && u.ID != 0
}

// Touch marks the session modified so saving rewrites the cookie with a
// fresh expiry.
func Touch(s sessions.Session) {
	s.Set(keySeenAt, time.Now().Unix())
}

// Clear drops everything, flashes included.
func Clear(s sessions.Session) {
	s.Clear()
}

func AddFlash(s sessions.Session, kind, msg string) {
	s.AddFlash(msg, kind)
}

// Flashes pops the queued messages of every kind. The caller saves.
func Flashes(s sessions.Session) map[string][]string {
	out := map[string][]string{}
	for _, kind := range []string{FlashError, FlashSuccess} {
		for _, f := range s.Flashes(kind) {
			if msg, ok := f.(string); ok {
				out[kind] = append(out[kind], msg)
			}
		}
	}
	return out
}

// SetReturnTo remembers where to go after login. Only local paths are kept.
func SetReturnTo(s sessions.Session, path string) {
	if IsLocalPath(path) {
		s.Set(keyReturnTo, path)
	}
}

// PopReturnTo returns and forgets the stored path, or fallback.
func PopReturnTo(s sessions.Session, fallback string) string {
	path, _ := s.Get(keyReturnTo).(string)
	s.Delete(keyReturnTo)
	if !IsLocalPath(path) {
		return fallback
	}
	return path
}

func IsLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.HasPrefix(path, "/\\")
}
