package handlers

import (
	"net/http"

	"recipebox/internal/apperror"
	"recipebox/internal/config"
	"recipebox/internal/logger"
	"recipebox/internal/middleware"
	"recipebox/internal/services"
	"recipebox/internal/session"
	"recipebox/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps is everything handlers need, built once at startup.
type Deps struct {
	Config *config.Config
	Log    logrus.FieldLogger
	Store  *store.Store
	Feed   *services.FeedService
	Mail   *services.MailService
}

// Render injects the current user, pending flashes and the current path.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, ok := middleware.CurrentUser(c); ok {
		obj["CurrentUser"] = user
	}

	flashes := map[string][]string{}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		s := sessions.Default(c)
		if flashes = session.Flashes(s); len(flashes) > 0 {
			_ = s.Save()
		}
	}
	obj["Flashes"] = flashes
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Status": code, "Error": message})
}

// publicMessage is what the client sees for err. Internal details are only
// shown in development.
func (d *Deps) publicMessage(err error) string {
	appErr := apperror.From(err)
	if appErr.Kind != apperror.InternalError {
		return appErr.Message
	}
	if d.Config != nil && !d.Config.IsProduction() && appErr.Err != nil {
		return appErr.Message + ": " + appErr.Err.Error()
	}
	return "Something went wrong, please try again later"
}

func (d *Deps) logInternal(c *gin.Context, err error) {
	if apperror.From(err).Kind == apperror.InternalError {
		logger.Error(d.Log, "request failed", err, logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(middleware.RequestIDKey),
		})
	}
}

// jsonError answers {success:false,error} with the mapped status.
func (d *Deps) jsonError(c *gin.Context, err error) {
	d.logInternal(c, err)
	c.JSON(apperror.StatusCode(err), gin.H{"success": false, "error": d.publicMessage(err)})
}

// pageError renders the error page with the mapped status, or answers JSON
// for API clients.
func (d *Deps) pageError(c *gin.Context, err error) {
	if middleware.WantsJSON(c) {
		d.jsonError(c, err)
		return
	}
	d.logInternal(c, err)
	RenderError(c, apperror.StatusCode(err), d.publicMessage(err))
}

// fail answers err as JSON for API clients, otherwise flashes it and
// redirects to back.
func (d *Deps) fail(c *gin.Context, err error, back string) {
	if middleware.WantsJSON(c) {
		d.jsonError(c, err)
		return
	}
	d.logInternal(c, err)
	flashRedirect(c, session.FlashError, d.publicMessage(err), back)
}

// succeed answers {success:true, ...extra} or flashes msg and redirects.
// Pending session changes are saved either way.
func succeed(c *gin.Context, msg, to string, extra gin.H) {
	if middleware.WantsJSON(c) {
		_ = sessions.Default(c).Save()
		body := gin.H{"success": true}
		for k, v := range extra {
			body[k] = v
		}
		if to != "" {
			body["redirectUrl"] = to
		}
		c.JSON(http.StatusOK, body)
		return
	}
	flashRedirect(c, session.FlashSuccess, msg, to)
}

func flashRedirect(c *gin.Context, kind, msg, to string) {
	s := sessions.Default(c)
	if msg != "" {
		session.AddFlash(s, kind, msg)
	}
	_ = s.Save()
	c.Redirect(http.StatusFound, to)
}

// Recovery renders a generic 500 for panics.
func (d *Deps) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		d.Log.WithFields(logrus.Fields{
			"panic":      recovered,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(middleware.RequestIDKey),
		}).Error("panic recovered")
		const msg = "Something went wrong, please try again later"
		if middleware.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
			return
		}
		RenderError(c, http.StatusInternalServerError, msg)
		c.Abort()
	})
}

// NotFound handles unmatched routes.
func (d *Deps) NotFound(c *gin.Context) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
		return
	}
	RenderError(c, http.StatusNotFound, "The page you are looking for does not exist")
}
