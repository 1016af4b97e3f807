package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mangaden/internal/auth"
	"mangaden/internal/middleware"
	"mangaden/internal/models"
	"mangaden/internal/service"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newAuthTestHandler(svc service.AuthService) *AuthHandler {
	tokens := auth.NewTokenManager("test-session-secret-at-least-32-ch", time.Hour)
	return NewAuthHandler(svc, tokens, false, nil)
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	mockAuth := new(MockAuthService)
	handler := newAuthTestHandler(mockAuth)
	router := setupRouter()
	router.POST("/auth/login", handler.Login)

	mockAuth.On("Login", mock.Anything, "reader", "password123").
		Return("tok-abc", &models.User{ID: "user-1", Username: "reader"}, nil)

	w := postForm(router, "/auth/login", url.Values{
		"username": {"reader"},
		"password": {"password123"},
		"next":     {"/user/profile"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/profile", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=tok-abc")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuth := new(MockAuthService)
	handler := newAuthTestHandler(mockAuth)
	router := setupRouter()
	router.POST("/auth/login", handler.Login)

	mockAuth.On("Login", mock.Anything, "reader", "wrong").
		Return("", nil, service.ErrInvalidCredentials)

	w := postForm(router, "/auth/login", url.Values{
		"username": {"reader"},
		"password": {"wrong"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	assert.NotContains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=tok")
}

func TestLogin_ExternalNextRejected(t *testing.T) {
	mockAuth := new(MockAuthService)
	handler := newAuthTestHandler(mockAuth)
	router := setupRouter()
	router.POST("/auth/login", handler.Login)

	mockAuth.On("Login", mock.Anything, "reader", "password123").
		Return("tok-abc", &models.User{ID: "user-1"}, nil)

	for _, next := range []string{"https://evil.example", "//evil.example", "evil"} {
		w := postForm(router, "/auth/login", url.Values{
			"username": {"reader"},
			"password": {"password123"},
			"next":     {next},
		})
		assert.Equal(t, "/", w.Header().Get("Location"), "next=%q must not escape the site", next)
	}
}

func TestRegister_RedirectsToLogin(t *testing.T) {
	mockAuth := new(MockAuthService)
	handler := newAuthTestHandler(mockAuth)
	router := setupRouter()
	router.POST("/auth/register", handler.Register)

	mockAuth.On("Register", mock.Anything, "reader", "reader@example.com", "password123", "password123").
		Return(&models.User{ID: "user-1", Username: "reader"}, nil)

	w := postForm(router, "/auth/register", url.Values{
		"username":  {"reader"},
		"email":     {"reader@example.com"},
		"password1": {"password123"},
		"password2": {"password123"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestRegister_DuplicateStaysOnForm(t *testing.T) {
	mockAuth := new(MockAuthService)
	handler := newAuthTestHandler(mockAuth)
	router := setupRouter()
	router.POST("/auth/register", handler.Register)

	mockAuth.On("Register", mock.Anything, "reader", "reader@example.com", "password123", "password123").
		Return(nil, service.ErrNameInUse)

	w := postForm(router, "/auth/register", url.Values{
		"username":  {"reader"},
		"email":     {"reader@example.com"},
		"password1": {"password123"},
		"password2": {"password123"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/register", w.Header().Get("Location"))
}

func TestLogout_ClearsCookie(t *testing.T) {
	handler := newAuthTestHandler(new(MockAuthService))
	router := setupRouter()
	router.POST("/auth/logout", handler.Logout)

	w := postForm(router, "/auth/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=;")
}
