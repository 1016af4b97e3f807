package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"mangaden/internal/middleware"
	"mangaden/internal/session"
)

// base carries what every page handler needs to render: the flash store
// for one-shot notices shown after a redirect.
type base struct {
	flashes session.FlashStore
}

// flash queues a notice for the next page load. Failures are swallowed,
// a lost notice is not worth failing the request over.
func (b *base) flash(c *gin.Context, typ, message string) {
	if b.flashes == nil {
		return
	}
	_ = b.flashes.Add(c.Request.Context(), c.Writer, c.Request, session.Flash{Type: typ, Message: message})
}

// view merges the page's data with what the base layout needs: the
// signed-in user, queued flashes and the CSRF form field.
func (b *base) view(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if username, exists := c.Get("username"); exists {
		data["Username"] = username
	}
	if role, exists := c.Get("role"); exists {
		data["Role"] = role
	}
	if b.flashes != nil {
		if flashes, err := b.flashes.Pop(c.Request.Context(), c.Request); err == nil {
			data["Flashes"] = flashes
		}
	}
	if token := middleware.CSRFToken(c); token != "" {
		data["CSRFField"] = template.HTML(`<input type="hidden" name="gorilla.csrf.Token" value="` + token + `">`)
	}
	return data
}

func (b *base) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", b.view(c, gin.H{
		"Title":   "Not found",
		"Message": "The page you are looking for does not exist.",
	}))
}

func (b *base) serverError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", b.view(c, gin.H{
		"Title":   "Something went wrong",
		"Message": "An unexpected error occurred. Please try again.",
	}))
}
