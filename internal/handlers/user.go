package handlers

import (
	"net/http"

	"recipebox/internal/apperror"
	"recipebox/internal/middleware"
	"recipebox/internal/session"
	"recipebox/internal/store"
	"recipebox/internal/utils"
	"recipebox/internal/validation"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*Deps
}

func NewUserHandler(d *Deps) *UserHandler {
	return &UserHandler{Deps: d}
}

// List - /users
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := middleware.CurrentUserID(c)
	page := store.NewPagination(utils.StringToInt(c.Query("page")), store.DefaultPageSize)

	total, err := h.Store.CountUsers(ctx, viewerID)
	if err != nil {
		h.pageError(c, err)
		return
	}
	page.Total = total
	users, err := h.Store.ListUsers(ctx, store.UserFilter{
		ExcludeID: viewerID,
		ViewerID:  viewerID,
		Limit:     page.PageSize,
		Offset:    page.Offset(),
	})
	if err != nil {
		h.pageError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "pagination": page})
		return
	}
	Render(c, http.StatusOK, "user/list.html", gin.H{
		"Title":      "Cooks",
		"Users":      users,
		"Pagination": page,
		"Query":      c.Request.URL.Query(),
	})
}

// Profile - /users/:username
func (h *UserHandler) Profile(c *gin.Context) {
	h.renderProfile(c, c.Param("username"))
}

// Me - /profile
func (h *UserHandler) Me(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	h.renderProfile(c, u.Username)
}

func (h *UserHandler) renderProfile(c *gin.Context, username string) {
	p, err := h.Store.GetUserProfile(c.Request.Context(), username, middleware.CurrentUserID(c), utils.StringToInt(c.Query("page")))
	if err != nil {
		h.pageError(c, err)
		return
	}
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "profile": p})
		return
	}
	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":      p.User.Username,
		"Profile":    p,
		"DaysJoined": utils.DaysSince(p.User.CreatedAt),
		"Query":      c.Request.URL.Query(),
	})
}

// Follow - POST /users/:username/follow
func (h *UserHandler) Follow(c *gin.Context) {
	h.changeFollow(c, true)
}

// Unfollow - DELETE /users/:username/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	h.changeFollow(c, false)
}

// changeFollow answers {success, following, followerCount}.
func (h *UserHandler) changeFollow(c *gin.Context, follow bool) {
	ctx := c.Request.Context()
	target, err := h.Store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		h.jsonError(c, err)
		return
	}
	viewerID := middleware.CurrentUserID(c)
	op := h.Store.Unfollow
	if follow {
		op = h.Store.Follow
	}
	if err := op(ctx, viewerID, target.ID); err != nil {
		h.jsonError(c, err)
		return
	}
	count, err := h.Store.FollowerCount(ctx, target.ID)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	h.Feed.InvalidateUsers(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "following": follow, "followerCount": count})
}

// ShowEditProfile - /profile/edit
func (h *UserHandler) ShowEditProfile(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.pageError(c, err)
		return
	}
	Render(c, http.StatusOK, "user/edit.html", gin.H{"Title": "Edit profile", "User": user})
}

type profileForm struct {
	Username        string `form:"username" json:"username" binding:"required,username"`
	Email           string `form:"email" json:"email" binding:"required,email,max=255"`
	Bio             string `form:"bio" json:"bio" binding:"max=500"`
	ProfileImage    string `form:"profile_image" json:"profile_image" binding:"omitempty,url,max=500"`
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password" binding:"omitempty,strongpwd,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// UpdateProfile - POST /profile/edit. A password change is applied only
// when a new password is given.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	const back = "/profile/edit"
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, apperror.NewValidationError(validation.Message(err), err), back)
		return
	}
	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if form.NewPassword != "" && form.NewPassword != form.ConfirmPassword {
		h.fail(c, apperror.NewValidationError("Passwords do not match", nil), back)
		return
	}

	user, err := h.Store.UpdateProfile(ctx, userID, store.ProfileUpdate{
		Username:        form.Username,
		Email:           form.Email,
		Bio:             form.Bio,
		ProfileImage:    form.ProfileImage,
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}
	if form.NewPassword != "" {
		h.Log.WithField("user_id", userID).Info("password changed")
	}
	h.Feed.InvalidateUsers(ctx)

	s := sessions.Default(c)
	session.SetUser(s, user)
	succeed(c, "Profile updated successfully!", "/profile", gin.H{"user": user})
}
