package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"recipebox/internal/apperror"
	"recipebox/internal/middleware"
	"recipebox/internal/session"
	"recipebox/internal/store"
	"recipebox/internal/validation"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*Deps
}

func NewAuthHandler(d *Deps) *AuthHandler {
	return &AuthHandler{Deps: d}
}

type signupForm struct {
	Username        string `form:"username" json:"username" binding:"required,username"`
	Email           string `form:"email" json:"email" binding:"required,email,max=255"`
	Password        string `form:"password" json:"password" binding:"required,strongpwd,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

type loginForm struct {
	Login    string `form:"login" json:"login" binding:"max=255"`
	Password string `form:"password" json:"password" binding:"max=1024"`
	Remember string `form:"remember" json:"remember"`
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Sign up"})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, apperror.NewValidationError(validation.Message(err), err), "/signup")
		return
	}
	if form.ConfirmPassword != "" && form.ConfirmPassword != form.Password {
		h.fail(c, apperror.NewValidationError("Passwords do not match", nil), "/signup")
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), store.NewUser{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.fail(c, err, "/signup")
		return
	}
	h.Feed.InvalidateUsers(c.Request.Context())

	s := sessions.Default(c)
	session.SetUser(s, user)
	h.Log.WithField("user_id", user.ID).Info("user signed up")
	succeed(c, "Account created successfully!", "/", gin.H{"user": user})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, apperror.NewValidationError(validation.Message(err), err), "/login")
		return
	}
	if strings.TrimSpace(form.Login) == "" || form.Password == "" {
		h.fail(c, apperror.NewValidationError("Please enter your email or username and password", nil), "/login")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.AuthenticateUser(ctx, form.Login, form.Password)
	if err != nil {
		h.fail(c, err, "/login")
		return
	}

	s := sessions.Default(c)
	session.SetUser(s, user)
	if remember(form.Remember) {
		token, err := h.Store.IssueRememberToken(ctx, user.ID, h.Config.RememberTTL)
		if err != nil {
			h.fail(c, err, "/login")
			return
		}
		middleware.SetRememberCookie(c, h.Config, token)
	}

	h.Log.WithField("user_id", user.ID).Info("user logged in")
	to := session.PopReturnTo(s, "/dashboard")
	succeed(c, "Welcome back, "+user.Username+"!", to, gin.H{"user": user})
}

func remember(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if uid := middleware.CurrentUserID(c); uid != 0 {
		if err := h.Store.ClearRememberToken(c.Request.Context(), uid); err != nil {
			h.logInternal(c, err)
		}
	}
	middleware.ClearRememberCookie(c, h.Config)

	s := sessions.Default(c)
	session.Clear(s)
	flashRedirect(c, session.FlashSuccess, "You have been logged out", "/login")
}

func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	Render(c, http.StatusOK, "auth/forgot_password.html", gin.H{"Title": "Forgot password"})
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	const done = "If that email is registered, a reset link is on its way"
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		h.fail(c, apperror.NewValidationError("Please enter your email", nil), "/forgot-password")
		return
	}

	user, token, err := h.Store.IssueResetToken(c.Request.Context(), email, h.Config.ResetTokenTTL)
	switch {
	case apperror.IsNotFound(err):
		h.Log.Debug("password reset requested for unknown email")
	case err != nil:
		h.fail(c, err, "/forgot-password")
		return
	default:
		link := strings.TrimRight(h.Config.SiteURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
		if err := h.Mail.SendPasswordReset(user.Email, user.Username, link, h.Config.ResetTokenTTL); err != nil {
			h.fail(c, apperror.NewInternalError("Could not send the reset email", err), "/forgot-password")
			return
		}
	}
	succeed(c, done, "/login", nil)
}

func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		RenderError(c, http.StatusBadRequest, "Invalid or expired reset link")
		return
	}
	Render(c, http.StatusOK, "auth/reset_password.html", gin.H{"Title": "Reset password", "Token": token})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.PostForm("token")
	password := c.PostForm("password")
	back := "/reset-password?token=" + url.QueryEscape(token)
	if confirm := c.PostForm("confirm_password"); confirm != "" && confirm != password {
		h.fail(c, apperror.NewValidationError("Passwords do not match", nil), back)
		return
	}
	if err := h.Store.ResetPassword(c.Request.Context(), token, password); err != nil {
		if apperror.IsNotFound(err) {
			back = "/forgot-password"
		}
		h.fail(c, err, back)
		return
	}
	succeed(c, "Password updated, please log in", "/login", nil)
}
