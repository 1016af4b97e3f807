package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRF wraps gorilla/csrf for gin. Every state-changing form post must
// carry the token; safe methods pass through untouched.
func CSRF(secret []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set("csrfToken", csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		// A rejected request never reaches the inner func; the error
		// handler has written the response, so stop the chain here.
		if !passed {
			c.Abort()
		}
	}
}

// csrfErrorHandler bounces a failed form post back to where it came
// from instead of showing a bare error.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	referer := r.Referer()
	if referer != "" {
		sep := "?"
		if strings.Contains(referer, "?") {
			sep = "&"
		}
		http.Redirect(w, r, referer+sep+"error=form+expired", http.StatusSeeOther)
		return
	}
	http.Error(w, "form expired, go back and try again", http.StatusForbidden)
}

// CSRFToken returns the token for the current request, for templates.
func CSRFToken(c *gin.Context) string {
	if token, exists := c.Get("csrfToken"); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}
