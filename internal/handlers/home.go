package handlers

import (
	"net/http"

	"recipebox/internal/middleware"

	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	*Deps
}

func NewHomeHandler(d *Deps) *HomeHandler {
	return &HomeHandler{Deps: d}
}

// Index - / and /dashboard
func (h *HomeHandler) Index(c *gin.Context) {
	home, err := h.Feed.Home(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.pageError(c, err)
		return
	}
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "home": home})
		return
	}
	Render(c, http.StatusOK, "home.html", gin.H{"Title": "Home", "Home": home})
}
