package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"mangaden/internal/auth"
	"mangaden/internal/models"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "mangaden_session"

// Session reads the session cookie and, when the token checks out, puts
// the user's identity into the request context. Requests without a
// valid session pass through anonymous; route guards decide what needs
// a login.
func Session(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			// Stale or tampered cookie, drop it.
			c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireLogin sends anonymous requests to the login page, keeping the
// original URL so login can bounce back.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("userID"); !exists {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, "/auth/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the admin area. Anonymous requests go to the
// login page, signed-in non-admins get a 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, "/auth/login?next="+next)
			c.Abort()
			return
		}
		if role != models.RoleAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, or "" when the
// request is anonymous.
func CurrentUserID(c *gin.Context) string {
	if id, exists := c.Get("userID"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
