package handlers

import (
	"context"
	"net/http"

	"recipebox/internal/middleware"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct {
	*Deps
}

func NewBookmarkHandler(d *Deps) *BookmarkHandler {
	return &BookmarkHandler{Deps: d}
}

// Save - POST /recipes/:id/save
func (h *BookmarkHandler) Save(c *gin.Context) {
	h.change(c, func(ctx context.Context, userID, recipeID uint) (bool, error) {
		return true, h.Store.SaveRecipe(ctx, userID, recipeID)
	})
}

// Unsave - DELETE /recipes/:id/save
func (h *BookmarkHandler) Unsave(c *gin.Context) {
	h.change(c, func(ctx context.Context, userID, recipeID uint) (bool, error) {
		return false, h.Store.UnsaveRecipe(ctx, userID, recipeID)
	})
}

// Toggle - POST /recipes/:id/save/toggle
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	h.change(c, h.Store.ToggleSave)
}

// change applies op and answers {success, saved, saveCount}.
func (h *BookmarkHandler) change(c *gin.Context, op func(ctx context.Context, userID, recipeID uint) (bool, error)) {
	id, err := recipeID(c)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	ctx := c.Request.Context()
	saved, err := op(ctx, middleware.CurrentUserID(c), id)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	count, err := h.Store.SaveCount(ctx, id)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "saved": saved, "saveCount": count})
}
