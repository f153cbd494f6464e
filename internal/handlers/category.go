package handlers

import (
	"net/http"

	"recipebox/internal/middleware"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	*Deps
}

func NewCategoryHandler(d *Deps) *CategoryHandler {
	return &CategoryHandler{Deps: d}
}

// List - /categories, grouped by type
func (h *CategoryHandler) List(c *gin.Context) {
	groups, err := h.Feed.Categories(c.Request.Context())
	if err != nil {
		h.pageError(c, err)
		return
	}
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": groups})
		return
	}
	Render(c, http.StatusOK, "category/list.html", gin.H{"Title": "Categories", "Groups": groups})
}
