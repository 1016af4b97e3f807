package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mangaden/internal/middleware"
	"mangaden/internal/repository"
	"mangaden/internal/service"
	"mangaden/internal/session"
)

const requestTimeout = 5 * time.Second

// PublicHandler serves the reader-facing pages: landing, search,
// series detail and the chapter reader.
type PublicHandler struct {
	base
	browse   service.BrowseService
	chapters service.ChapterService
}

func NewPublicHandler(browse service.BrowseService, chapters service.ChapterService, flashes session.FlashStore) *PublicHandler {
	return &PublicHandler{base: base{flashes: flashes}, browse: browse, chapters: chapters}
}

func (h *PublicHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Home)
	r.GET("/search", h.Search)
	r.GET("/category/:slug", h.Category)
	r.GET("/manga/:slug", h.Detail)
	r.GET("/manga/:slug/:chapter", h.Reader)
}

func (h *PublicHandler) Home(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data, err := h.browse.Home(ctx)
	if err != nil {
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "home.html", h.view(c, gin.H{
		"Latest":     data.Latest,
		"TopToday":   data.TopToday,
		"TopWeek":    data.TopWeek,
		"TopMonth":   data.TopMonth,
		"Categories": data.Categories,
	}))
}

func (h *PublicHandler) Search(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	filters := repository.SearchFilters{
		Query:        c.Query("q"),
		CategorySlug: c.Query("category"),
		Status:       c.Query("status"),
		Page:         pageParam(c),
	}

	list, total, err := h.browse.Search(ctx, filters)
	if err != nil {
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "search.html", h.view(c, gin.H{
		"Query":   filters.Query,
		"Status":  filters.Status,
		"Results": list,
		"Total":   total,
		"Page":    filters.Page,
	}))
}

func (h *PublicHandler) Category(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	category, list, total, err := h.browse.Category(ctx, c.Param("slug"), pageParam(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "category.html", h.view(c, gin.H{
		"Category": category,
		"Results":  list,
		"Total":    total,
		"Page":     pageParam(c),
	}))
}

func (h *PublicHandler) Detail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	detail, err := h.browse.Detail(ctx, c.Param("slug"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "manga_detail.html", h.view(c, gin.H{
		"Manga":         detail.Manga,
		"AverageRating": detail.AverageRating,
		"RatingCount":   detail.RatingCount,
		"UserScore":     detail.UserScore,
		"IsFollowing":   detail.IsFollowing,
		"Comments":      detail.Comments,
	}))
}

func (h *PublicHandler) Reader(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data, err := h.chapters.Reader(ctx, c.Param("slug"), c.Param("chapter"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "reader.html", h.view(c, gin.H{
		"Chapter":  data.Chapter,
		"Manga":    data.Chapter.Manga,
		"Images":   data.Images,
		"Next":     data.Next,
		"Previous": data.Previous,
	}))
}

func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}
