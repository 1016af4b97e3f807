package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mangaden/internal/auth"
	"mangaden/internal/middleware"
	"mangaden/internal/service"
	"mangaden/internal/session"
)

// AuthHandler serves the register, login and logout pages.
type AuthHandler struct {
	base
	auth       service.AuthService
	cookieTTL  int
	secureOnly bool
}

func NewAuthHandler(authService service.AuthService, tokens *auth.TokenManager, secureOnly bool, flashes session.FlashStore) *AuthHandler {
	return &AuthHandler{
		base:       base{flashes: flashes},
		auth:       authService,
		cookieTTL:  int(tokens.TTL().Seconds()),
		secureOnly: secureOnly,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/register", h.ShowRegister)
	rg.POST("/register", h.Register)
	rg.GET("/login", h.ShowLogin)
	rg.POST("/login", h.Login)
	rg.GET("/logout", h.Logout)
	rg.POST("/logout", h.Logout)
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", h.view(c, nil))
}

func (h *AuthHandler) Register(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	_, err := h.auth.Register(ctx,
		c.PostForm("username"),
		c.PostForm("email"),
		c.PostForm("password1"),
		c.PostForm("password2"),
	)
	if err != nil {
		h.flash(c, session.FlashError, registerErrorMessage(err))
		c.Redirect(http.StatusSeeOther, "/auth/register")
		return
	}

	h.flash(c, session.FlashSuccess, "Account created, you can log in now.")
	c.Redirect(http.StatusSeeOther, "/auth/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", h.view(c, gin.H{
		"Next": safeNext(c.Query("next")),
	}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	token, _, err := h.auth.Login(ctx, c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		h.flash(c, session.FlashError, "Invalid username or password.")
		c.Redirect(http.StatusSeeOther, "/auth/login")
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, h.cookieTTL, "/", "", h.secureOnly, true)
	c.Redirect(http.StatusSeeOther, safeNext(c.PostForm("next")))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureOnly, true)
	h.flash(c, session.FlashSuccess, "You have been logged out.")
	c.Redirect(http.StatusSeeOther, "/")
}

// safeNext only allows same-site relative redirect targets, anything
// else falls back to the landing page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// registerErrorMessage maps service errors to user-facing text. Errors
// without a mapping get a generic message so internals never leak into
// the page.
func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNameInUse):
		return "That username is already taken."
	case errors.Is(err, service.ErrEmailInUse):
		return "That email address is already registered."
	case errors.Is(err, service.ErrPasswordMismatch):
		return "The passwords do not match."
	case errors.Is(err, service.ErrWeakPassword):
		return "The password must be at least 8 characters."
	case errors.Is(err, service.ErrMissingField):
		return "Please fill in all required fields."
	default:
		return "Registration failed, please try again."
	}
}
